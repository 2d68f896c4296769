package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

// ReminderWorker mails booking owners and group leaders about work due
// within the next 24 hours. Each row is reminded at most once.
type ReminderWorker struct {
	DB     *gorm.DB
	Mailer *utils.Mailer
	Logger *log.Logger
}

func NewReminderWorker(db *gorm.DB, mailer *utils.Mailer, logger *log.Logger) *ReminderWorker {
	return &ReminderWorker{
		DB:     db,
		Mailer: mailer,
		Logger: logger,
	}
}

func (rw *ReminderWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Reminder worker started")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Reminder worker shutting down...")
			return
		case <-ticker.C:
			rw.processBookingReminders()
			rw.processTaskReminders()
		}
	}
}

func (rw *ReminderWorker) processBookingReminders() {
	cutoff := time.Now().Add(24 * time.Hour)

	var bookings []models.Booking
	err := rw.DB.Preload("Owner").Preload("Service").
		Where("due_date <= ? AND due_date >= ?", cutoff, utils.Today()).
		Where("status <> ?", models.BookingClosed).
		Where("reminder_sent_at IS NULL").
		Find(&bookings).Error
	if err != nil {
		rw.Logger.Printf("Error fetching bookings due soon: %v", err)
		return
	}

	for _, booking := range bookings {
		err := rw.Mailer.Send(booking.Owner.Email, "due_reminder", utils.MailData{
			Subject: "Booking due soon",
			Name:    booking.Owner.Username,
			What:    "Your booking for " + booking.Service.Name,
			DueDate: booking.DueDate.Format(utils.DateLayout),
		})
		if err != nil {
			rw.Logger.Printf("Error mailing booking %d reminder: %v", booking.ID, err)
			continue
		}
		if err := rw.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("reminder_sent_at", time.Now()).Error; err != nil {
			rw.Logger.Printf("Error marking booking %d reminded: %v", booking.ID, err)
		}
	}
}

func (rw *ReminderWorker) processTaskReminders() {
	cutoff := time.Now().Add(24 * time.Hour)

	var tasks []models.Task
	err := rw.DB.
		Where("due_date <= ? AND due_date >= ?", cutoff, utils.Today()).
		Where("reminder_sent_at IS NULL").
		Find(&tasks).Error
	if err != nil {
		rw.Logger.Printf("Error fetching tasks due soon: %v", err)
		return
	}

	for _, task := range tasks {
		leader, err := rw.taskLeader(task)
		if err != nil || leader == nil {
			continue
		}

		err = rw.Mailer.Send(leader.Email, "due_reminder", utils.MailData{
			Subject: "Task due soon",
			Name:    leader.Username,
			What:    "Task \"" + task.Title + "\"",
			DueDate: task.DueDate.Format(utils.DateLayout),
		})
		if err != nil {
			rw.Logger.Printf("Error mailing task %d reminder: %v", task.ID, err)
			continue
		}
		if err := rw.DB.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("reminder_sent_at", time.Now()).Error; err != nil {
			rw.Logger.Printf("Error marking task %d reminded: %v", task.ID, err)
		}
	}
}

// taskLeader resolves the leader of the group a task is routed to,
// walking booking -> group booking -> group.
func (rw *ReminderWorker) taskLeader(task models.Task) (*models.User, error) {
	var groupBooking models.GroupBooking
	if err := rw.DB.Preload("Group").Preload("Group.Leader").
		Where("booking_id = ?", task.BookingID).
		First(&groupBooking).Error; err != nil {
		return nil, err
	}
	return groupBooking.Group.Leader, nil
}
