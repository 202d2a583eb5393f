package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/interfaces"
)

// ConversationStore persists conversations and their message log.
type ConversationStore struct {
	db *gorm.DB
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// CreateConversation inserts the conversation, generating an id if missing.
func (s *ConversationStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation loads one of the owner's conversations with its full
// message log in chronological order.
func (s *ConversationStore) GetConversation(ctx context.Context, id string, ownerID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// ListConversations returns the owner's conversations, most recently active
// first, without messages.
func (s *ConversationStore) ListConversations(ctx context.Context, ownerID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes one of the owner's conversations and its
// messages.
func (s *ConversationStore) DeleteConversation(ctx context.Context, id string, ownerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).
			Delete(&models.Conversation{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		if err := tx.Where("conversation_id = ?", id).
			Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return nil
	})
}

// RecentMessages returns up to limit of the newest messages of the
// conversation, reordered oldest first so callers can replay them directly.
func (s *ConversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AppendExchange persists the user message and the assistant reply in that
// order and touches the conversation's UpdatedAt, all in one transaction.
func (s *ConversationStore) AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg *models.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, msg := range []*models.Message{userMsg, assistantMsg} {
			msg.ConversationID = conversationID
			if msg.ID == "" {
				msg.ID = uuid.NewString()
			}
			if err := tx.Create(msg).Error; err != nil {
				return fmt.Errorf("failed to append message: %w", err)
			}
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return fmt.Errorf("failed to touch conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// compile-time check to ensure ConversationStore implements the interface
var _ interfaces.ConversationStore = (*ConversationStore)(nil)
