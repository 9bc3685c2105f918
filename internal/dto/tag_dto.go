// FILE: internal/dto/tag_dto.go
package dto

import "github.com/google/uuid"

type TagRequest struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

type TagResponse struct {
	Id    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Value string    `json:"value"`
}
