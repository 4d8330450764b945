package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AndriiVeremi/contacts-api/internal/events"
	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
)

// ContactSearcher is implemented by search.Contacts. A nil searcher means
// search falls back to SQL filtering.
type ContactSearcher interface {
	IndexContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, contactID uint) error
	Search(ctx context.Context, userID uint, firstName, lastName, email string) ([]models.Contact, error)
}

type ContactData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	ExtraInfo string
}

type ContactService struct {
	Repo     *repo.GormRepo
	Searcher ContactSearcher
	Pub      EventPublisher
}

func NewContactService(r *repo.GormRepo) *ContactService {
	return &ContactService{Repo: r}
}

func (s *ContactService) GetContacts(ctx context.Context, user *models.User, limit, offset int) ([]models.Contact, error) {
	return s.Repo.GetContacts(ctx, user.ID, limit, offset)
}

func (s *ContactService) GetContact(ctx context.Context, contactID uint, user *models.User) (*models.Contact, error) {
	contact, err := s.Repo.GetContactByID(ctx, contactID, user.ID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *ContactService) CreateContact(ctx context.Context, data ContactData, user *models.User) (*models.Contact, error) {
	contact := &models.Contact{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Phone:     data.Phone,
		Birthday:  data.Birthday,
		ExtraInfo: data.ExtraInfo,
		UserID:    user.ID,
	}
	if err := s.Repo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}

	s.index(ctx, contact)
	s.publish(ctx, user, contact, "contact_created")
	return contact, nil
}

func (s *ContactService) UpdateContact(ctx context.Context, contactID uint, data ContactData, user *models.User) (*models.Contact, error) {
	contact, err := s.Repo.GetContactByID(ctx, contactID, user.ID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}

	contact.FirstName = data.FirstName
	contact.LastName = data.LastName
	contact.Email = data.Email
	contact.Phone = data.Phone
	contact.Birthday = data.Birthday
	contact.ExtraInfo = data.ExtraInfo

	if err := s.Repo.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}

	s.index(ctx, contact)
	s.publish(ctx, user, contact, "contact_updated")
	return contact, nil
}

func (s *ContactService) RemoveContact(ctx context.Context, contactID uint, user *models.User) error {
	contact, err := s.Repo.GetContactByID(ctx, contactID, user.ID)
	if err != nil {
		return err
	}
	if contact == nil {
		return nil
	}
	if err := s.Repo.DeleteContact(ctx, contactID, user.ID); err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}

	if s.Searcher != nil {
		if err := s.Searcher.DeleteContact(ctx, contactID); err != nil {
			logging.FromContext(ctx).Warn("search_deindex_failed", "contact_id", contactID, "error", err)
		}
	}
	s.publish(ctx, user, contact, "contact_deleted")
	return nil
}

// SearchContacts prefers the Elasticsearch index when one is wired in and
// falls back to SQL filtering otherwise (or when the index errors out).
func (s *ContactService) SearchContacts(ctx context.Context, user *models.User, firstName, lastName, email string) ([]models.Contact, error) {
	if s.Searcher != nil {
		contacts, err := s.Searcher.Search(ctx, user.ID, firstName, lastName, email)
		if err == nil {
			return contacts, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
	}
	return s.Repo.SearchContacts(ctx, user.ID, firstName, lastName, email)
}

// GetUpcomingBirthdays returns contacts whose birthday falls within the
// next `days` days, counting from today and wrapping across New Year.
func (s *ContactService) GetUpcomingBirthdays(ctx context.Context, user *models.User, days int) ([]models.Contact, error) {
	contacts, err := s.Repo.AllContacts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	var upcoming []models.Contact
	for _, c := range contacts {
		if within, _ := birthdayWithin(c.Birthday, today, days); within {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

// birthdayWithin reports whether the next occurrence of the birthday is at
// most `days` days away, and how far away it is.
func birthdayWithin(birthday, today time.Time, days int) (bool, int) {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	next := time.Date(y, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(start) {
		next = time.Date(y+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}

	until := int(next.Sub(start).Hours() / 24)
	return until <= days, until
}

func (s *ContactService) index(ctx context.Context, contact *models.Contact) {
	if s.Searcher == nil {
		return
	}
	if err := s.Searcher.IndexContact(ctx, contact); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "contact_id", contact.ID, "error", err)
	}
}

func (s *ContactService) publish(ctx context.Context, user *models.User, contact *models.Contact, eventType string) {
	if s.Pub == nil {
		return
	}
	err := s.Pub.PublishEvent(ctx, events.TopicContactEvents, fmt.Sprint(user.ID), map[string]any{
		"type":       eventType,
		"user_id":    user.ID,
		"contact_id": contact.ID,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}
