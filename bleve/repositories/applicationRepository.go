package repositories

import (
	"strings"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

const applicationIndex = "applications"

type bleveApplicationDoc struct {
	ID                string `json:"id"`
	ApplicationNumber string `json:"application_number"`
	OwnerName         string `json:"owner_name,omitempty"`
	District          string `json:"district"`
	Tehsil            string `json:"tehsil,omitempty"`
	Address           string `json:"address,omitempty"`
	Category          string `json:"category"`
	Status            string `json:"status"`
	CertificateNumber string `json:"certificate_number,omitempty"`
}

func toApplicationDoc(application *models.Application) bleveApplicationDoc {
	doc := bleveApplicationDoc{
		ID:                application.ID.String(),
		ApplicationNumber: strings.ToLower(application.ApplicationNumber),
		District:          application.District,
		Tehsil:            application.Tehsil,
		Address:           application.Address,
		Category:          string(application.Category),
		Status:            string(application.Status),
	}
	if application.Owner.FirstName != "" || application.Owner.LastName != "" {
		doc.OwnerName = strings.TrimSpace(application.Owner.FirstName + " " + application.Owner.LastName)
	}
	if application.CertificateNumber != nil {
		doc.CertificateNumber = strings.ToLower(*application.CertificateNumber)
	}
	return doc
}

func (r *BleveRepository) IndexApplication(application *models.Application) error {
	err := r.indexer.IndexDocument(applicationIndex, application.ID.String(), toApplicationDoc(application))
	if err != nil {
		config.Logger.Error("Failed to index application into Bleve",
			zap.Error(err),
			zap.String("application_id", application.ID.String()))
		return err
	}
	return nil
}

func (r *BleveRepository) IndexExistingApplications(applications []models.Application) error {
	docsToBleveIndex := make(map[string]interface{})
	for i := range applications {
		docsToBleveIndex[applications[i].ID.String()] = toApplicationDoc(&applications[i])
	}

	if len(docsToBleveIndex) == 0 {
		config.Logger.Info("No applications to index into Bleve.")
		return nil
	}

	if err := r.indexer.BulkIndexDocuments(applicationIndex, docsToBleveIndex); err != nil {
		config.Logger.Error("Failed to bulk index applications into Bleve", zap.Error(err))
		return err
	}
	config.Logger.Info("Successfully bulk indexed applications into Bleve",
		zap.Int("count", len(docsToBleveIndex)))
	return nil
}

func (r *BleveRepository) DeleteApplication(applicationID string) error {
	return r.indexer.DeleteDocument(applicationIndex, applicationID)
}

// SearchApplications ranks exact number/certificate matches above phrase
// and fuzzy matches on the descriptive fields, with optional district and
// status filters.
func (r *BleveRepository) SearchApplications(queryString, district, status string) (*bleve.SearchResult, error) {
	booleanQuery := bleve.NewBooleanQuery()

	queryString = strings.TrimSpace(strings.ToLower(queryString))

	// 1. Exact matches (highest priority)
	exactMatch := bleve.NewBooleanQuery()
	exactFields := []string{"application_number", "certificate_number"}
	for _, field := range exactFields {
		termQuery := bleve.NewTermQuery(queryString)
		termQuery.SetField(field)
		termQuery.SetBoost(6.0)
		exactMatch.AddShould(termQuery)
	}

	// 2. Phrase matches (high priority)
	phraseMatch := bleve.NewBooleanQuery()
	phraseFields := []string{"owner_name", "address", "tehsil"}
	for _, field := range phraseFields {
		phraseQuery := bleve.NewMatchPhraseQuery(queryString)
		phraseQuery.SetField(field)
		phraseQuery.SetBoost(5.0)
		phraseMatch.AddShould(phraseQuery)
	}

	// 3. Fuzzy matches (fallback)
	fuzzyMatch := bleve.NewBooleanQuery()
	for _, field := range []string{"owner_name", "address"} {
		fuzzyQuery := bleve.NewFuzzyQuery(queryString)
		fuzzyQuery.SetField(field)
		fuzzyQuery.SetFuzziness(1)
		fuzzyMatch.AddShould(fuzzyQuery)
	}

	booleanQuery.AddShould(exactMatch)
	booleanQuery.AddShould(phraseMatch)
	booleanQuery.AddShould(fuzzyMatch)

	if district != "" {
		districtQuery := bleve.NewTermQuery(district)
		districtQuery.SetField("district")
		booleanQuery.AddMust(districtQuery)
	}
	if status != "" {
		statusQuery := bleve.NewTermQuery(status)
		statusQuery.SetField("status")
		booleanQuery.AddMust(statusQuery)
	}

	return r.indexer.SearchIndex(applicationIndex, booleanQuery, 50)
}

func (r *BleveRepository) GetApplicationDocument(id string) (interface{}, error) {
	return r.indexer.GetDocument(applicationIndex, id)
}
