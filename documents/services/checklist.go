package services

import (
	"fmt"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
)

// RequiredDocumentTypes is the fixed checklist a final submission must
// satisfy. Every type needs at least one live entry; property photos need
// MinPropertyPhotos of them.
var RequiredDocumentTypes = []models.DocumentType{
	models.RevenuePapersDocument,
	models.AffidavitDocument,
	models.UndertakingDocument,
	models.VerificationRegisterDocument,
	models.BillBookDocument,
	models.PropertyPhotoDocument,
}

// MinPropertyPhotos is the minimum number of property photographs.
const MinPropertyPhotos = 2

// MissingRequirements returns an itemized list of unmet document
// requirements, empty when the checklist is complete. Only latest-version,
// non-deleted entries count.
func MissingRequirements(docs []models.Document) []string {
	counts := make(map[models.DocumentType]int)
	for _, d := range docs {
		if !d.IsLatestVersion {
			continue
		}
		counts[d.DocumentType]++
	}

	var missing []string
	for _, required := range RequiredDocumentTypes {
		n := counts[required]
		if required == models.PropertyPhotoDocument {
			if n < MinPropertyPhotos {
				missing = append(missing, fmt.Sprintf("%s (minimum %d, have %d)",
					required, MinPropertyPhotos, n))
			}
			continue
		}
		if n == 0 {
			missing = append(missing, string(required))
		}
	}
	return missing
}

// IsComplete reports whether the document checklist is fully satisfied.
func IsComplete(docs []models.Document) bool {
	return len(MissingRequirements(docs)) == 0
}
