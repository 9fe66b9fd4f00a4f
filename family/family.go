/*
Package family manages household members (people and pets).

Members are the assignees of recurring and daily tasks. The reference
from a task to a member is non-owning: deleting a member does not
cascade into task history.
*/
package family

import (
	"context"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/warp/household-engine/household"
)

// MemberType distinguishes people from pets.
type MemberType string

const (
	TypePerson MemberType = "Person"
	TypePet    MemberType = "Pet"
)

// PetType narrows pets for display.
type PetType string

const (
	PetDog   PetType = "dog"
	PetCat   PetType = "cat"
	PetOther PetType = "other"
)

// Member is one household member.
type Member struct {
	MemberID   string                   `json:"member_id"`
	Name       string                   `json:"name"`
	MemberType MemberType               `json:"member_type"`
	PetType    PetType                  `json:"pet_type,omitempty"`
	Status     household.TemplateStatus `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// Store persists members.
type Store interface {
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id string) (*Member, error)
	CreateMember(ctx context.Context, m Member) error
	UpdateMember(ctx context.Context, m Member) error
	DeleteMember(ctx context.Context, id string) error
}

// Names allow letters, digits, spaces, hyphens, and apostrophes only.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-']+$`)

// Service applies business validation around the store.
type Service struct {
	Store Store
	Now   func() time.Time
	NewID func() string
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		Store: store,
		Now:   time.Now,
		NewID: func() string { return uuid.NewString() },
	}
}

// Validate checks a member's fields, returning a sanitized copy.
func (s *Service) Validate(m Member) (Member, error) {
	name, err := household.SanitizeDisplayString("name", m.Name, household.MaxMemberNameLen)
	if err != nil {
		return Member{}, err
	}
	if !namePattern.MatchString(name) {
		return Member{}, &household.ValidationError{Field: "name", Message: "name contains invalid characters"}
	}
	m.Name = name

	switch m.MemberType {
	case TypePerson:
		if m.PetType != "" {
			return Member{}, &household.ValidationError{Field: "pet_type", Message: "pet_type should not be provided for a Person"}
		}
	case TypePet:
		switch m.PetType {
		case PetDog, PetCat, PetOther:
		default:
			return Member{}, &household.ValidationError{Field: "pet_type", Message: "pet_type is required for a Pet"}
		}
	default:
		return Member{}, &household.ValidationError{Field: "member_type", Message: "member_type must be Person or Pet"}
	}

	if m.Status != household.TemplateActive && m.Status != household.TemplateInactive {
		return Member{}, &household.ValidationError{Field: "status", Message: "status must be Active or Inactive"}
	}
	return m, nil
}

// CreateMember validates and persists a new member.
func (s *Service) CreateMember(ctx context.Context, m Member) (*Member, error) {
	m, err := s.Validate(m)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	m.MemberID = s.NewID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.Store.CreateMember(ctx, m); err != nil {
		log.Printf("[Family] failed to create member %q: %v", m.Name, err)
		return nil, household.ErrUpdateFailed
	}
	return &m, nil
}

// UpdateMember validates and persists changes to an existing member.
// Returns (nil, nil) when the member does not exist.
func (s *Service) UpdateMember(ctx context.Context, m Member) (*Member, error) {
	existing, err := s.Store.GetMember(ctx, m.MemberID)
	if err != nil {
		log.Printf("[Family] failed to load member %s: %v", m.MemberID, err)
		return nil, household.ErrUpdateFailed
	}
	if existing == nil {
		return nil, nil
	}

	m, err = s.Validate(m)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.Now().UTC()

	if err := s.Store.UpdateMember(ctx, m); err != nil {
		log.Printf("[Family] failed to update member %s: %v", m.MemberID, err)
		return nil, household.ErrUpdateFailed
	}
	return &m, nil
}
