package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/response"
)

const attachmentsField = "attachments"

type messageService interface {
	List(ctx context.Context, filter models.MessageFilter) ([]models.Message, error)
	Send(ctx context.Context, req dto.SendMessageRequest, uploads []service.MessageUpload) (*models.Message, error)
	UpdateFlags(ctx context.Context, id string, flags models.MessageFlags) (*models.Message, error)
	Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

type notificationService interface {
	List(ctx context.Context, audience string) ([]models.Notification, error)
	Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error)
	Delete(ctx context.Context, id string) error
}

// MessageHandler serves internal messages and notifications.
type MessageHandler struct {
	messages      messageService
	notifications notificationService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages messageService, notifications notificationService) *MessageHandler {
	return &MessageHandler{messages: messages, notifications: notifications}
}

// List godoc
// @Summary List messages
// @Tags Messages
// @Produce json
// @Param receiver query string false "Receiver"
// @Param unread query bool false "Only unread"
// @Param search query string false "Subject, sender or body"
// @Success 200 {array} models.Message
// @Router /api/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	unread, err := queryBool(c, "unread")
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	messages, err := h.messages.List(c.Request.Context(), models.MessageFilter{
		Receiver:   strings.TrimSpace(c.Query("receiver")),
		UnreadOnly: unread,
		Search:     strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	response.Document(c, http.StatusOK, messages)
}

// Send godoc
// @Summary Send message
// @Description Accepts JSON, or multipart form fields with files under "attachments".
// @Tags Messages
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message"
// @Success 201 {object} object
// @Router /api/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	var uploads []service.MessageUpload

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form"))
			return
		}
		files := form.File[attachmentsField]
		opened := make([]multipart.File, 0, len(files))
		defer func() {
			for _, f := range opened {
				_ = f.Close()
			}
		}()
		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read attachment"))
				return
			}
			opened = append(opened, file)
			uploads = append(uploads, service.MessageUpload{Filename: header.Filename, Size: header.Size, Content: file})
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	message, err := h.messages.Send(c.Request.Context(), req, uploads)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusCreated, gin.H{"success": true, "data": message})
}

// UpdateFlags godoc
// @Summary Toggle read, pinned or liked
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param payload body models.MessageFlags true "Flags"
// @Success 200 {object} models.Message
// @Router /api/messages/{id} [put]
func (h *MessageHandler) UpdateFlags(c *gin.Context) {
	var flags models.MessageFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	message, err := h.messages.UpdateFlags(c.Request.Context(), c.Param("id"), flags)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, message)
}

// Reply godoc
// @Summary Reply to message
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param payload body dto.ReplyRequest true "Reply"
// @Success 201 {object} models.Message
// @Router /api/messages/{id}/replies [post]
func (h *MessageHandler) Reply(c *gin.Context) {
	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	message, err := h.messages.Reply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusCreated, message)
}

// Delete godoc
// @Summary Delete message
// @Tags Messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} object
// @Router /api/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// ListNotifications godoc
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param audience query string false "All, Students or Teachers"
// @Success 200 {array} models.Notification
// @Router /api/notifications [get]
func (h *MessageHandler) ListNotifications(c *gin.Context) {
	items, err := h.notifications.List(c.Request.Context(), c.Query("audience"))
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	response.Document(c, http.StatusOK, items)
}

// CreateNotification godoc
// @Summary Publish notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} models.Notification
// @Router /api/notifications [post]
func (h *MessageHandler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorMessage(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	notification, err := h.notifications.Create(c.Request.Context(), req)
	if err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusCreated, notification)
}

// DeleteNotification godoc
// @Summary Delete notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} object
// @Failure 404 {object} object
// @Router /api/notifications/{id} [delete]
func (h *MessageHandler) DeleteNotification(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorMessage(c, err)
		return
	}
	response.Document(c, http.StatusOK, gin.H{"message": "Deleted successfully"})
}
