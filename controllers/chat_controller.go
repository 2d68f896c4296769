package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

// ChatController serves the group chat log and the leader's closing
// report. Both read and write access require being the group's leader or
// a member; everyone else gets a forbidden outcome, not a redirect.
type ChatController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Mailer *utils.Mailer
}

func NewChatController(db *gorm.DB, logger *log.Logger, mailer *utils.Mailer) *ChatController {
	return &ChatController{DB: db, Logger: logger, Mailer: mailer}
}

func (cc *ChatController) loadGroupForMember(c *fiber.Ctx) (*models.Group, error) {
	user := c.Locals("user").(*models.User)

	var group models.Group
	if err := cc.DB.Preload("Leader").First(&group, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.NotFoundResponse(c, "Group")
	}

	allowed, err := group.IsMemberOrLeader(cc.DB, user.ID)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !allowed {
		return nil, utils.ForbiddenResponse(c)
	}
	return &group, nil
}

// GetGroupChat returns the group with its messages ordered by creation
// time, insertion order breaking ties.
func (cc *ChatController) GetGroupChat(c *fiber.Ctx) error {
	group, errResp := cc.loadGroupForMember(c)
	if group == nil {
		return errResp
	}

	var messages []models.GroupMessage
	err := cc.DB.Preload("Sender").
		Where("group_id = ?", group.ID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load messages", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"group":    group,
		"messages": messages,
	}))
}

// PostGroupMessage appends to the chat log. A message needs text content
// or a file; a fully empty submission is rejected, never stored blank.
func (cc *ChatController) PostGroupMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	group, errResp := cc.loadGroupForMember(c)
	if group == nil {
		return errResp
	}

	content := strings.TrimSpace(c.FormValue("content"))

	var filePath string
	if file, err := c.FormFile("file"); err == nil && file != nil {
		filePath, err = utils.SaveUpload(c, file, "group_files")
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
		}
	}

	if content == "" && filePath == "" {
		return utils.ValidationErrorResponse(c, "Message needs text content or a file", fiber.Map{
			"content": content,
		})
	}

	message := models.GroupMessage{
		GroupID:  group.ID,
		SenderID: user.ID,
		Content:  content,
		File:     filePath,
	}
	if err := cc.DB.Create(&message).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to post message", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(message))
}

// SubmitGroupReport is the leader's one-time closing submission for a
// group booking. It transitions the booking to closed and notifies the
// booking's owner.
func (cc *ChatController) SubmitGroupReport(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var groupBooking models.GroupBooking
	err := cc.DB.Preload("Group").Preload("Booking").Preload("Booking.Owner").Preload("Booking.Service").
		First(&groupBooking, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return utils.NotFoundResponse(c, "Group booking")
	}

	if groupBooking.Group.LeaderID == nil || *groupBooking.Group.LeaderID != user.ID {
		return utils.ForbiddenResponse(c)
	}

	var input struct {
		ReportText string `json:"report_text" form:"report_text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	reportText := strings.TrimSpace(input.ReportText)
	if reportText == "" {
		return utils.ValidationErrorResponse(c, "Report text is required", fiber.Map{
			"report_text": "",
		})
	}

	report := models.GroupReport{
		GroupBookingID: groupBooking.ID,
		ReportText:     reportText,
		SubmittedByID:  user.ID,
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).Where("id = ?", groupBooking.BookingID).
			Update("status", models.BookingClosed).Error
	})
	if err != nil {
		// The unique index on group_booking_id makes a second report an
		// integrity violation, reported as a validation error.
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "A report was already submitted for this booking", fiber.Map{
				"report_text": reportText,
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to submit report", err)
	}

	if groupBooking.Booking != nil {
		owner := groupBooking.Booking.Owner
		go func() {
			if err := cc.Mailer.Send(owner.Email, "report_submitted", utils.MailData{
				Subject:     "Your booking has been completed",
				Name:        owner.Username,
				ServiceName: groupBooking.Booking.Service.Name,
				GroupName:   groupBooking.Group.Name,
			}); err != nil {
				cc.Logger.Printf("report notification failed: %v", err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(report))
}

// UpgradeChatWS gates the websocket upgrade behind the same membership
// check as the HTTP chat endpoints.
func (cc *ChatController) UpgradeChatWS(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	group, errResp := cc.loadGroupForMember(c)
	if group == nil {
		return errResp
	}

	c.Locals("groupID", group.ID)
	return c.Next()
}

// StreamGroupChat pushes new chat messages to the connected client as
// they are appended.
func (cc *ChatController) StreamGroupChat(c *websocket.Conn) {
	defer c.Close()

	groupID := c.Locals("groupID").(uint)

	var lastID uint
	cc.DB.Model(&models.GroupMessage{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&lastID)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var messages []models.GroupMessage
		err := cc.DB.Preload("Sender").
			Where("group_id = ? AND id > ?", groupID, lastID).
			Order("created_at asc, id asc").
			Find(&messages).Error
		if err != nil {
			cc.Logger.Printf("chat stream query failed: %v", err)
			return
		}

		for _, message := range messages {
			if err := c.WriteJSON(message); err != nil {
				return
			}
			lastID = message.ID
		}
	}
}
