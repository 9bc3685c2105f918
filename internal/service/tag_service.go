package service

import (
	"context"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/unitofwork"
	"pazuzu-registry/pkg/catalog/mapper"
	"pazuzu-registry/pkg/catalog/tag"
)

type ITagService interface {
	List(ctx context.Context) ([]*dto.TagResponse, error)
}

type tagService struct {
	tx         *transactor
	tagManager *tag.Manager
}

func NewTagService(uowFactory unitofwork.RepositoryFactory, tagManager *tag.Manager, logger logger.ILogger, maxRetries int) ITagService {
	return &tagService{
		tx: &transactor{
			uowFactory: uowFactory,
			maxRetries: maxRetries,
			logger:     logger,
		},
		tagManager: tagManager,
	}
}

func (s *tagService) List(ctx context.Context) ([]*dto.TagResponse, error) {
	var tags []*entity.Tag
	err := s.tx.read(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		tags, err = s.tagManager.List(ctx, uow)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapper.TagsToResponse(tags), nil
}
