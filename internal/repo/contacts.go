package repo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contactsapi/internal/model"
	"contactsapi/internal/service"

	"gorm.io/gorm"
)

// LookupField is the closed set of contact fields the byfield lookup
// accepts. Anything else yields an empty result, not an error.
type LookupField string

const (
	LookupID        LookupField = "id"
	LookupFirstName LookupField = "first_name"
	LookupLastName  LookupField = "last_name"
	LookupEmail     LookupField = "email"
)

// ContactData carries the writable contact fields. Name, email and
// additional are lowercased before they hit the database.
type ContactData struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	BornDate   time.Time
	Additional string
}

type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) ListForUser(userID uint) ([]model.Contact, error) {
	var contacts []model.Contact

	err := s.db.Where("user_id = ?", userID).Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	if contacts == nil {
		contacts = []model.Contact{}
	}

	return contacts, nil
}

// Get returns the contact with the given ID if it belongs to the user.
// A missing ID and someone else's ID are both ErrNotFound.
func (s *ContactStore) Get(id, userID uint) (*model.Contact, error) {
	var contact model.Contact

	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// FindBy looks contacts up by one of the closed lookup fields. An unknown
// field or a non-integer value for the id field returns an empty slice.
func (s *ContactStore) FindBy(field LookupField, value string, userID uint) ([]model.Contact, error) {
	var contacts []model.Contact

	query := s.db.Where("user_id = ?", userID)

	switch field {
	case LookupID:
		id, err := strconv.Atoi(value)
		if err != nil {
			return []model.Contact{}, nil
		}
		query = query.Where("id = ?", id)
	case LookupFirstName:
		query = query.Where("first_name = ?", value)
	case LookupLastName:
		query = query.Where("last_name = ?", value)
	case LookupEmail:
		query = query.Where("email = ?", value)
	default:
		return []model.Contact{}, nil
	}

	if err := query.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to find contacts by %s: %w", field, err)
	}

	return contacts, nil
}

func (s *ContactStore) Create(data ContactData, userID uint) (*model.Contact, error) {
	contact := model.Contact{
		FirstName:  strings.ToLower(data.FirstName),
		LastName:   strings.ToLower(data.LastName),
		Email:      strings.ToLower(data.Email),
		Phone:      data.Phone,
		BornDate:   data.BornDate,
		Additional: strings.ToLower(data.Additional),
		UserID:     userID,
	}

	if err := s.db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return &contact, nil
}

// Update overwrites the contact's fields with data. Passing a nil contact
// is a no-op that returns the input unchanged.
func (s *ContactStore) Update(contact *model.Contact, data ContactData) (*model.Contact, error) {
	if contact == nil {
		return nil, nil
	}

	contact.FirstName = strings.ToLower(data.FirstName)
	contact.LastName = strings.ToLower(data.LastName)
	contact.Email = strings.ToLower(data.Email)
	contact.Phone = data.Phone
	contact.BornDate = data.BornDate
	contact.Additional = strings.ToLower(data.Additional)

	if err := s.db.Save(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

// Delete removes the contact. Passing nil is a no-op.
func (s *ContactStore) Delete(contact *model.Contact) (*model.Contact, error) {
	if contact == nil {
		return nil, nil
	}

	if err := s.db.Delete(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}

	return contact, nil
}

// UpcomingBirthdays returns the user's contacts whose birthday anniversary
// falls within the next 7 days of today.
func (s *ContactStore) UpcomingBirthdays(userID uint, today time.Time) ([]model.Contact, error) {
	var candidates []service.BirthdayCandidate

	err := s.db.Model(&model.Contact{}).
		Where("user_id = ?", userID).
		Select("id", "born_date").
		Find(&candidates).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load birthday candidates: %w", err)
	}

	ids := service.UpcomingBirthdayIDs(candidates, today)
	if len(ids) == 0 {
		return []model.Contact{}, nil
	}

	var contacts []model.Contact
	err = s.db.Where("id IN ? AND user_id = ?", ids, userID).Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch birthday contacts: %w", err)
	}

	return contacts, nil
}
