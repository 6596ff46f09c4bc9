package services

import (
	"context"

	"biolink-gateway/application/ports"
	"biolink-gateway/domain/core/entities"

	"go.uber.org/zap"
)

// PhenotypeWalker lists the phenotypes linked to a gene, one association
// per relationship. Results are neither paged, deduplicated nor cached.
type PhenotypeWalker struct {
	store  ports.GraphStore
	taxa   ports.TaxonSource
	logger *zap.Logger
}

// NewPhenotypeWalker creates a new phenotype walker
func NewPhenotypeWalker(store ports.GraphStore, taxa ports.TaxonSource, logger *zap.Logger) *PhenotypeWalker {
	return &PhenotypeWalker{
		store:  store,
		taxa:   taxa,
		logger: logger,
	}
}

// GetGeneToPhenotype returns the gene to phenotype associations of geneID
func (w *PhenotypeWalker) GetGeneToPhenotype(ctx context.Context, geneID string) (*entities.AssociationResults, error) {
	paths, err := w.store.GeneToPhenotype(ctx, geneID)
	if err != nil {
		return nil, err
	}

	results := entities.NewAssociationResults()
	for _, path := range paths {
		for _, rel := range path.Relationships {
			gene, phenotype, err := path.Endpoints(rel)
			if err != nil {
				return nil, err
			}

			subject := entities.AssociationSubject{
				ID:    gene.StringProp(propPrimaryKey),
				Label: gene.StringProp(propSymbol),
			}
			if taxonID := gene.StringProp(propTaxonID); taxonID != "" {
				name, err := resolveTaxon(ctx, w.taxa, taxonID)
				if err != nil {
					return nil, err
				}
				subject.Taxon = &entities.Taxon{ID: taxonID, Label: name}
			}

			objectLabel := phenotype.StringProp(propName)
			if objectLabel == "" {
				objectLabel = phenotype.StringProp(propPrimaryKey)
			}

			results.Associations = append(results.Associations, entities.Association{
				ID:      rel.ElementID,
				Subject: subject,
				Object: entities.AssociationObject{
					ID:    phenotype.StringProp(propPrimaryKey),
					Label: objectLabel,
				},
				Relation: entities.Relation{
					ID:    rel.StringProp(propUUID),
					Label: rel.Type,
				},
			})
		}
	}

	w.logger.Debug("Gene phenotype associations collected",
		zap.String("geneID", geneID),
		zap.Int("associations", len(results.Associations)),
	)
	return results, nil
}
