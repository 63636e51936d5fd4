package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/google/uuid"
)

const notificationsKey = "notifications-storage"

type notificationState struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// NotificationStore keeps a persisted, most-recent-first notification list
// with an unread counter. It implements Notifier, so it can be attached
// directly to an UploadStore as the event sink.
type NotificationStore struct {
	mu    sync.Mutex
	kv    metadata.Repository
	log   logging.Logger
	state notificationState
}

func NewNotificationStore(ctx context.Context, kv metadata.Repository, log logging.Logger) *NotificationStore {
	s := &NotificationStore{kv: kv, log: log}

	if data, err := kv.Get(ctx, notificationsKey); err != nil {
		log.Warn(ctx, "notifications not loaded", "error", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.state); err != nil {
			log.Warn(ctx, "notification state corrupt, starting empty", "error", err)
			s.state = notificationState{}
		}
	}
	return s
}

// Notify records an event, filling in id and timestamp when the emitter
// left them empty.
func (s *NotificationStore) Notify(ctx context.Context, n models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp == 0 {
		n.Timestamp = time.Now().UnixMilli()
	}
	n.Read = false

	s.mu.Lock()
	s.state.Notifications = append([]models.Notification{n}, s.state.Notifications...)
	s.state.UnreadCount++
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// List returns a copy of all notifications, most recent first.
func (s *NotificationStore) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.state.Notifications))
	copy(out, s.state.Notifications)
	return out
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UnreadCount
}

// MarkAsRead marks one notification read. Unknown ids are ignored.
func (s *NotificationStore) MarkAsRead(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	unread := 0
	for i := range s.state.Notifications {
		if s.state.Notifications[i].ID == id && !s.state.Notifications[i].Read {
			s.state.Notifications[i].Read = true
			changed = true
		}
		if !s.state.Notifications[i].Read {
			unread++
		}
	}
	if changed {
		s.state.UnreadCount = unread
		s.persistLocked(ctx)
	}
}

// MarkAllAsRead marks every notification read and resets the counter.
func (s *NotificationStore) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Notifications {
		s.state.Notifications[i].Read = true
	}
	s.state.UnreadCount = 0
	s.persistLocked(ctx)
}

// Remove deletes one notification, adjusting the unread counter when the
// removed entry was unread.
func (s *NotificationStore) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.state.Notifications {
		if n.ID != id {
			continue
		}
		s.state.Notifications = append(s.state.Notifications[:i], s.state.Notifications[i+1:]...)
		if !n.Read && s.state.UnreadCount > 0 {
			s.state.UnreadCount--
		}
		s.persistLocked(ctx)
		return
	}
}

// ClearAll removes every notification.
func (s *NotificationStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = notificationState{}
	s.persistLocked(ctx)
}

func (s *NotificationStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error(ctx, "failed to serialize notifications", "error", err)
		return
	}
	if err := s.kv.Set(ctx, notificationsKey, data); err != nil {
		s.log.Error(ctx, "failed to persist notifications", "error", err)
	}
}
