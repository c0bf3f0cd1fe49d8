package importer

import (
	"context"
	"strings"
)

// Required and optional database properties. The required set gates the whole
// run; optional properties are skipped per article when the database lacks them.
var (
	requiredProperties = []string{"Title", "URL", "Domain", "Source"}
	optionalProperties = []string{"Status", "AddedDate", "Tags", "ReadingStatus", "Rating"}
)

// CheckDatabaseProperties retrieves the target database schema once and
// verifies the required properties exist. The full present-property set is
// cached for the publish loop. Any retrieval or validation problem yields
// false; nothing is raised past this boundary.
func (imp *Importer) CheckDatabaseProperties(ctx context.Context) bool {
	db, err := imp.api.RetrieveDatabase(ctx, imp.databaseID)
	if err != nil {
		imp.log.ErrorObj("database schema retrieval failed", "schema_error", map[string]any{
			"database_id": imp.databaseID,
			"error":       err.Error(),
		})
		return false
	}

	imp.available = make(map[string]struct{}, len(db.Properties))
	for name := range db.Properties {
		imp.available[name] = struct{}{}
	}

	var missing []string
	for _, name := range requiredProperties {
		if _, ok := imp.available[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		imp.log.ErrorObj("required database properties missing", "missing_properties", strings.Join(missing, ", "))
		imp.log.InfoObj("create these properties on the database", "property_hints", map[string]any{
			"required": map[string]string{
				"Title":  "Title",
				"URL":    "URL",
				"Domain": "Text",
				"Source": "Select",
			},
			"optional": map[string]string{
				"Status":        "Select",
				"AddedDate":     "Date",
				"Tags":          "Multi-select",
				"ReadingStatus": "Select",
				"Rating":        "Select",
			},
		})
		return false
	}

	var presentOptional, missingOptional []string
	for _, name := range optionalProperties {
		if _, ok := imp.available[name]; ok {
			presentOptional = append(presentOptional, name)
		} else {
			missingOptional = append(missingOptional, name)
		}
	}

	if len(presentOptional) > 0 {
		imp.log.InfoObj("optional properties available", "optional_present", strings.Join(presentOptional, ", "))
	}
	if len(missingOptional) > 0 {
		imp.log.InfoObj("optional properties not created, will be skipped", "optional_missing", strings.Join(missingOptional, ", "))
	}

	imp.log.InfoObj("database property check completed", "database_id", imp.databaseID)
	return true
}
