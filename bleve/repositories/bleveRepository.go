package repositories

import (
	"context"

	bleveindex "github.com/microaistudio/hptourism-r1-sub000/bleve/services"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/blevesearch/bleve/v2"
)

type BleveRepository struct {
	indexer *bleveindex.IndexingService
}

type BleveRepositoryInterface interface {
	// General
	DeleteAllIndices(ctx context.Context) error

	// ==== Application Indexing ====
	IndexApplication(application *models.Application) error
	IndexExistingApplications(applications []models.Application) error
	DeleteApplication(applicationID string) error
	SearchApplications(queryString, district, status string) (*bleve.SearchResult, error)
	GetApplicationDocument(id string) (interface{}, error)
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer *bleveindex.IndexingService) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}

func (r *BleveRepository) DeleteAllIndices(ctx context.Context) error {
	return r.indexer.DeleteAllIndices()
}
