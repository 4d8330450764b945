package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/AndriiVeremi/contacts-api/internal/models"
)

func (r *GormRepo) GetContacts(ctx context.Context, userID uint, limit, offset int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit).
		Offset(offset).
		Order("id").
		Find(&contacts).Error
	return contacts, err
}

func (r *GormRepo) GetContactByID(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *GormRepo) CreateContact(ctx context.Context, contact *models.Contact) error {
	return r.DB.WithContext(ctx).Create(contact).Error
}

func (r *GormRepo) UpdateContact(ctx context.Context, contact *models.Contact) error {
	return r.DB.WithContext(ctx).Save(contact).Error
}

func (r *GormRepo) DeleteContact(ctx context.Context, contactID, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		Delete(&models.Contact{}).Error
}

// SearchContacts filters by case-insensitive substring on any combination
// of first name, last name and email. Empty criteria are skipped.
func (r *GormRepo) SearchContacts(ctx context.Context, userID uint, firstName, lastName, email string) ([]models.Contact, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if firstName != "" {
		q = q.Where("LOWER(first_name) LIKE ?", like(firstName))
	}
	if lastName != "" {
		q = q.Where("LOWER(last_name) LIKE ?", like(lastName))
	}
	if email != "" {
		q = q.Where("LOWER(email) LIKE ?", like(email))
	}

	var contacts []models.Contact
	err := q.Order("id").Find(&contacts).Error
	return contacts, err
}

func like(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// AllContacts returns every contact of the user; the birthday window is
// computed in the service so the query stays portable across dialects.
func (r *GormRepo) AllContacts(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&contacts).Error
	return contacts, err
}
