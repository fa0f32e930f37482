package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/prepaid/internal/credential/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Store {
	return &repo{db: db}
}

func (r *repo) Find(ctx context.Context, principal string) (*domain.AccessToken, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return nil, domain.ErrInvalidPrincipal
	}

	var token domain.AccessToken
	err := r.db.WithContext(ctx).
		Where("principal = ?", principal).
		Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repo) Save(ctx context.Context, token *domain.AccessToken) error {
	if token == nil || strings.TrimSpace(token.Token) == "" {
		return domain.ErrInvalidToken
	}
	if strings.TrimSpace(token.Principal) == "" {
		return domain.ErrInvalidPrincipal
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "metadata", "updated_at"}),
	}).Create(token).Error
}
