package lifecycle

import (
	"github.com/sirupsen/logrus"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/log"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// DocumentStore is the slice of the lifecycle store the registrar
// depends on.
type DocumentStore interface {
	Register(path, docType, author string, meta Metadata) (*DocumentRecord, error)
}

// RegistrationResult records the outcome for one artifact.
type RegistrationResult struct {
	Path     string
	Document *DocumentRecord // nil when Err is set
	Err      error
}

// Registrar persists detected artifacts as documents.
type Registrar struct {
	store DocumentStore
}

// NewRegistrar creates a Registrar. A nil store is a valid degraded
// mode: registration then short-circuits with a single warning per
// batch.
func NewRegistrar(store DocumentStore) *Registrar {
	return &Registrar{store: store}
}

// RegisterAll classifies and registers each artifact independently and
// returns one result per attempted artifact. It never returns an error:
// a failure in classification or in the store is recorded on that
// artifact's result and logged, and its siblings proceed untouched.
func (r *Registrar) RegisterAll(artifacts []string, def *workflow.Definition, epic, story string, vars map[string]string) []RegistrationResult {
	logger := log.GetLogger()
	if len(artifacts) == 0 {
		return nil
	}
	if r.store == nil {
		logger.WithFields(logrus.Fields{
			"workflow":  def.Name,
			"artifacts": len(artifacts),
		}).Warn("document store unavailable, skipping registration")
		return nil
	}

	results := make([]RegistrationResult, 0, len(artifacts))
	for _, path := range artifacts {
		rec, err := r.registerOne(path, def, epic, story, vars)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"workflow": def.Name,
				"path":     path,
			}).WithError(err).Error("artifact registration failed")
			results = append(results, RegistrationResult{Path: path, Err: err})
			continue
		}
		logger.WithFields(logrus.Fields{
			"workflow": def.Name,
			"path":     path,
			"doc_type": rec.DocType,
			"document": rec.ID,
		}).Info("artifact registered")
		results = append(results, RegistrationResult{Path: path, Document: rec})
	}
	return results
}

func (r *Registrar) registerOne(path string, def *workflow.Definition, epic, story string, vars map[string]string) (*DocumentRecord, error) {
	docType, author, err := Classify(path, def)
	if err != nil {
		return nil, err
	}
	meta := Metadata{
		Workflow:        def.Name,
		Epic:            epic,
		Story:           story,
		Phase:           def.Phase,
		Variables:       vars,
		PipelineCreated: true,
	}
	return r.store.Register(path, docType, author, meta)
}
