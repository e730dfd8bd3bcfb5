package dto

import (
	"time"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/neusi/task-manager-api/internal/utils"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        uint64                  `json:"id"`
	Verb      models.NotificationVerb `json:"verb"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	URL       string                  `json:"url"`
	IsRead    bool                    `json:"is_read"`
	Actor     *UserDTO                `json:"actor"`
	CreatedAt time.Time               `json:"created_at"`
}

// InboxResponse represents a page of notifications
type InboxResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Unread        int64                    `json:"unread"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        n.ID,
		Verb:      n.Verb,
		Title:     n.Title,
		Message:   n.Message,
		URL:       n.URL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Actor != nil {
		actor := ToUserDTO(*n.Actor)
		dto.Actor = &actor
	}
	return dto
}

// ToInboxResponse converts an inbox page to InboxResponse
func ToInboxResponse(inbox services.Inbox, page utils.PaginationParams) InboxResponse {
	items := make([]NotificationDTO, len(inbox.Items))
	for i, n := range inbox.Items {
		items[i] = ToNotificationDTO(n)
	}
	return InboxResponse{
		Notifications: items,
		Unread:        inbox.Unread,
		Pagination:    utils.NewPaginationResponse(page, inbox.Total),
	}
}
