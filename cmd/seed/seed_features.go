package main

import (
	"context"
	"errors"
	"log"

	"pazuzu-registry/internal/config"
	"pazuzu-registry/internal/dto"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/unitofwork"
	"pazuzu-registry/pkg/catalog/feature"
	"pazuzu-registry/pkg/catalog/tag"
	"pazuzu-registry/pkg/database"
)

type seedFeature struct {
	name         string
	dockerData   string
	description  string
	dependencies []string
	tags         []dto.TagRequest
}

// Listed so every feature comes after its dependencies.
var catalog = []seedFeature{
	{
		name:        "base",
		dockerData:  "FROM ubuntu:22.04\nRUN apt-get update && apt-get install -y curl ca-certificates",
		description: "Ubuntu base image with curl",
		tags:        []dto.TagRequest{{Name: "os", Value: "ubuntu"}},
	},
	{
		name:         "python",
		dockerData:   "RUN apt-get install -y python3 python3-pip",
		description:  "Python 3 interpreter and pip",
		dependencies: []string{"base"},
		tags:         []dto.TagRequest{{Name: "language", Value: "python"}},
	},
	{
		name:         "java",
		dockerData:   "RUN apt-get install -y openjdk-17-jdk",
		description:  "OpenJDK 17",
		dependencies: []string{"base"},
		tags:         []dto.TagRequest{{Name: "language", Value: "java"}},
	},
	{
		name:         "node",
		dockerData:   "RUN curl -fsSL https://deb.nodesource.com/setup_20.x | bash - && apt-get install -y nodejs",
		description:  "Node.js 20",
		dependencies: []string{"base"},
		tags:         []dto.TagRequest{{Name: "language", Value: "javascript"}},
	},
	{
		name:         "maven",
		dockerData:   "RUN apt-get install -y maven",
		description:  "Maven build tool",
		dependencies: []string{"java"},
		tags:         []dto.TagRequest{{Name: "language", Value: "java"}, {Name: "tool", Value: "build"}},
	},
}

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Feature Catalog...")

	manager := feature.NewManager(tag.NewManager(), logger.NewNopLogger())
	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()

	for _, f := range catalog {
		err := seed(ctx, uowFactory, manager, f)
		switch {
		case errors.Is(err, apperrors.ErrAlreadyExists):
			log.Printf("Feature '%s' already exists, skipping...", f.name)
		case err != nil:
			log.Printf("Error creating feature '%s': %v", f.name, err)
		default:
			log.Printf("Created feature: %s", f.name)
		}
	}

	log.Println("Feature seeding completed!")
}

func seed(ctx context.Context, uowFactory unitofwork.RepositoryFactory, manager *feature.Manager, f seedFeature) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	dockerData, description := f.dockerData, f.description
	if _, err := manager.Create(ctx, uow, dto.CreateFeatureRequest{
		Name:         f.name,
		DockerData:   &dockerData,
		Description:  &description,
		Dependencies: f.dependencies,
		Tags:         f.tags,
	}); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
