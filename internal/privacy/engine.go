// Package privacy implements the deidentification engine: ordered PII
// matchers with per-category mapping tables so a value always gets the same
// placeholder for the lifetime of an Engine.
//
// An Engine is not safe for concurrent use. Callers that share one across
// goroutines must serialise access themselves.
package privacy

import (
	"fmt"
	"strings"

	"github.com/raaihank/deidentify/internal/config"
	"github.com/raaihank/deidentify/internal/logger"
	"go.uber.org/zap"
)

// DefaultIdentifier is used when a caller has no document identifier
const DefaultIdentifier = "participant"

// Engine replaces PII in text with consistent placeholders
type Engine struct {
	logger  *logger.Logger
	enabled map[Category]bool

	emails *mappingTable

	phones       *mappingTable
	phoneCounter int

	knownNames    []knownName
	commonNames   []commonName
	useRoleLabels bool

	ids       *mappingTable
	idCounter int

	documents int
}

// New creates a new engine with empty mapping tables
func New(cfg config.PrivacyConfig, log *logger.Logger) (*Engine, error) {
	known, common, err := compileNames(cfg.Names)
	if err != nil {
		return nil, fmt.Errorf("failed to compile name tables: %w", err)
	}

	engine := &Engine{
		logger:        log,
		enabled:       make(map[Category]bool),
		emails:        newMappingTable(),
		phones:        newMappingTable(),
		ids:           newMappingTable(),
		knownNames:    known,
		commonNames:   common,
		useRoleLabels: cfg.Names.UseRoleLabels,
	}

	if err := engine.configureCategories(cfg.Categories); err != nil {
		return nil, fmt.Errorf("failed to configure categories: %w", err)
	}

	log.Info("Deidentification engine initialized",
		zap.Strings("categories", engine.EnabledCategories()),
		zap.Int("known_names", len(known)),
		zap.Int("common_names", len(common)),
		zap.Bool("role_labels", cfg.Names.UseRoleLabels),
	)

	return engine, nil
}

// configureCategories enables categories based on configuration
func (e *Engine) configureCategories(categories []string) error {
	for _, c := range Categories {
		e.enabled[c] = false
	}

	for _, name := range categories {
		if name == "all" {
			for _, c := range Categories {
				e.enabled[c] = true
			}
			continue
		}

		c := Category(name)
		if _, ok := e.enabled[c]; !ok {
			return fmt.Errorf("unknown category: %s", name)
		}
		e.enabled[c] = true
	}

	return nil
}

// Deidentify returns text with every recognised PII span replaced
func (e *Engine) Deidentify(text, documentID string) string {
	return e.Process(text, documentID).Text
}

// Process runs the email, phone, name and identifier passes in that order
// and reports what each replaced. Emails get the lower-cased identifier and
// names the upper-cased one.
func (e *Engine) Process(text, documentID string) ProcessResult {
	if documentID == "" {
		documentID = DefaultIdentifier
	}

	out := text
	findings := make([]Finding, 0, len(Categories))

	for _, category := range Categories {
		if !e.enabled[category] {
			continue
		}

		var stats passStats
		switch category {
		case CategoryEmail:
			out, stats = e.deidentifyEmails(out, strings.ToLower(documentID))
		case CategoryPhone:
			out, stats = e.deidentifyPhones(out)
		case CategoryName:
			out, stats = e.deidentifyNames(out, strings.ToUpper(documentID))
		case CategoryIdentifier:
			out, stats = e.deidentifyIDs(out)
		}

		if stats.count == 0 {
			continue
		}

		findings = append(findings, Finding{
			Category: category,
			Count:    stats.count,
			New:      stats.new,
		})

		e.logger.Debug("PII detected and replaced",
			zap.String("category", string(category)),
			zap.Int("count", stats.count),
			zap.Int("new", stats.new),
		)
	}

	e.documents++

	return ProcessResult{
		Text:     out,
		Findings: findings,
	}
}

// EnabledCategories returns the enabled category names in pipeline order
func (e *Engine) EnabledCategories() []string {
	var enabled []string
	for _, c := range Categories {
		if e.enabled[c] {
			enabled = append(enabled, string(c))
		}
	}
	return enabled
}

// Stats returns the accumulated mapping table sizes and counters
func (e *Engine) Stats() Stats {
	stats := Stats{Documents: e.documents}
	for _, c := range Categories {
		cs := CategoryStats{Category: c, Enabled: e.enabled[c]}
		switch c {
		case CategoryEmail:
			cs.Mappings = e.emails.len()
		case CategoryPhone:
			cs.Mappings = e.phones.len()
			cs.Counter = e.phoneCounter
		case CategoryIdentifier:
			cs.Mappings = e.ids.len()
			cs.Counter = e.idCounter
		}
		stats.Categories = append(stats.Categories, cs)
	}
	return stats
}

// Mappings returns the mapping table of a category in insertion order.
// Names have no table and return nil. The result holds original values and
// must never be logged or written out.
func (e *Engine) Mappings(category Category) []Mapping {
	switch category {
	case CategoryEmail:
		return e.emails.entries()
	case CategoryPhone:
		return e.phones.entries()
	case CategoryIdentifier:
		return e.ids.entries()
	default:
		return nil
	}
}
