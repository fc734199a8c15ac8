package review

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/reviewkata/reviewkata-go/catalog"
	"github.com/reviewkata/reviewkata-go/model"
	"github.com/reviewkata/reviewkata-go/parse"
	"github.com/reviewkata/reviewkata-go/prompt"
)

// domains is the fixed pool of application domains a generation draws
// from when the caller does not supply one.
var domains = []string{
	"user_management",
	"file_processing",
	"data_validation",
	"calculation",
	"inventory_system",
	"notification_service",
	"logging",
	"banking",
	"e-commerce",
	"student_management",
}

// Generator produces defect-seeded code artifacts via the generative
// model role.
type Generator struct {
	Catalog catalog.Store
	Model   model.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator builds a Generator over the catalog and the generative
// client.
func NewGenerator(cat catalog.Store, client model.Client) *Generator {
	return &Generator{
		Catalog: cat,
		Model:   client,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand fixes the domain-pick source, for deterministic tests.
func (g *Generator) SetRand(rng *rand.Rand) {
	g.mu.Lock()
	g.rng = rng
	g.mu.Unlock()
}

// Generate resolves the selection into a manifest, prompts the
// generative model and parses the two code variants into an artifact.
func (g *Generator) Generate(ctx context.Context, sel catalog.Selection, length prompt.Length, difficulty catalog.Difficulty, locale catalog.Locale, domain string) (CodeArtifact, error) {
	manifest, err := g.resolveManifest(ctx, sel, locale)
	if err != nil {
		return CodeArtifact{}, fmt.Errorf("resolve defect selection: %w", err)
	}
	if len(manifest) == 0 {
		return CodeArtifact{}, fmt.Errorf("selection resolved to no defects")
	}
	if domain == "" {
		domain = g.pickDomain()
	}

	p := prompt.CodeGeneration(manifest, length, difficulty, domain, locale)
	response, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return CodeArtifact{}, fmt.Errorf("generate code: %w", err)
	}
	return g.buildArtifact(response, manifest, domain)
}

// Regenerate produces a replacement artifact from a feedback prompt
// composed by the evaluator. The manifest and domain carry over from
// the prior artifact.
func (g *Generator) Regenerate(ctx context.Context, prior CodeArtifact, feedbackPrompt string) (CodeArtifact, error) {
	response, err := g.Model.Invoke(ctx, feedbackPrompt)
	if err != nil {
		return CodeArtifact{}, fmt.Errorf("regenerate code: %w", err)
	}
	return g.buildArtifact(response, prior.Manifest, prior.Domain)
}

func (g *Generator) buildArtifact(response string, manifest []catalog.DefectInfo, domain string) (CodeArtifact, error) {
	annotated, clean := parse.ExtractCodeVariants(response)
	if strings.TrimSpace(annotated) == "" {
		return CodeArtifact{}, fmt.Errorf("model response contained no code")
	}
	return CodeArtifact{
		Annotated:     annotated,
		Clean:         clean,
		Manifest:      manifest,
		ExpectedCount: len(manifest),
		Domain:        domain,
	}, nil
}

// resolveManifest turns a selection into concrete defects: explicit
// codes resolve one by one, category draws go through sampling.
func (g *Generator) resolveManifest(ctx context.Context, sel catalog.Selection, locale catalog.Locale) ([]catalog.DefectInfo, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if !sel.Explicit() {
		return g.Catalog.SampleDefects(ctx, sel, locale)
	}

	manifest := make([]catalog.DefectInfo, 0, len(sel.DefectCodes))
	for _, code := range sel.DefectCodes {
		d, err := g.Catalog.GetDefect(ctx, code, locale)
		if err != nil {
			return nil, fmt.Errorf("defect %s: %w", code, err)
		}
		manifest = append(manifest, d)
		g.Catalog.RecordUsage(ctx, catalog.UsageRecord{DefectCode: code, Action: catalog.ActionPracticed})
	}
	return manifest, nil
}

func (g *Generator) pickDomain() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domains[g.rng.Intn(len(domains))]
}
