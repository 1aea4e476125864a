// services/metadata_service.go
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
)

// CatalogLookup fetches raw catalog metadata for a dataset identifier.
type CatalogLookup interface {
	LookupDataset(ctx context.Context, identifier string) models.CatalogLookupResult
}

// MetadataResolver turns catalog lookups into CatalogMetadata, falling back
// to defaults whenever the catalog has nothing useful to say.
type MetadataResolver struct {
	catalog CatalogLookup
	log     zerolog.Logger
}

func NewMetadataResolver(catalog CatalogLookup, log zerolog.Logger) *MetadataResolver {
	return &MetadataResolver{catalog: catalog, log: log}
}

// Resolve never fails; every path returns fully populated metadata.
func (r *MetadataResolver) Resolve(ctx context.Context, identifier string) models.CatalogMetadata {
	meta := models.DefaultCatalogMetadata()
	res := r.catalog.LookupDataset(ctx, identifier)

	if res.Diagnostic != "" {
		r.log.Info().Str("socrata_id", identifier).Str("diagnostic", res.Diagnostic).
			Msg("socrata lookup produced diagnostic output")
	}

	switch {
	case res.Payload == nil:
		r.log.Error().Str("socrata_id", identifier).Str("diagnostic", res.Diagnostic).
			Msg("could not find matching socrata metadata")
		meta.RawMetadata = res.Diagnostic

	case res.Payload.HasError():
		r.log.Error().Str("socrata_id", identifier).Str("payload", res.Payload.String()).
			Msg("socrata lookup returned an error")
		if name, ok := res.Payload.Field("name"); ok {
			meta.Name = name
		}
		meta.RawMetadata = res.Payload.String()

	default:
		if name, ok := res.Payload.Field("name"); ok {
			meta.Name = name
		}
		if homepage, ok := res.Payload.Field("homepage"); ok {
			meta.Homepage = homepage
		}
		if description, ok := res.Payload.Field("description"); ok {
			meta.Description = description
		}
		meta.RawMetadata = res.Payload.String()
	}

	r.log.Debug().Str("socrata_id", identifier).Str("socrata_meta", meta.RawMetadata).
		Msg("matched socrata id to socrata metadata")
	return meta
}
