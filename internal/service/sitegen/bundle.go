package sitegen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagesmith/pagesmith/internal/domain"
)

// Request carries the inputs needed to materialize a site bundle.
type Request struct {
	Task        string
	Brief       string
	Round       int
	Checks      []string
	Attachments []domain.Attachment
}

// Bundle maps repository file paths to file contents.
type Bundle map[string]string

// Generator materializes static site bundles for task briefs.
type Generator struct {
	owner  string
	clock  func() time.Time
	llm    *LLM
	logger *slog.Logger
}

// Option customises generator construction.
type Option func(*Generator)

// WithClock overrides the time source, used to pin the license year in tests.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithLLM attaches an optional LLM used for generic page generation.
func WithLLM(llm *LLM) Option {
	return func(g *Generator) { g.llm = llm }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New constructs a Generator. The owner parameterizes the license copyright
// line; callers usually source it via OwnerFromEnv.
func New(owner string, opts ...Option) *Generator {
	g := &Generator{
		owner:  owner,
		clock:  time.Now,
		logger: slog.Default(),
	}
	if g.owner == "" {
		g.owner = DefaultOwner
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the full file set for a task: index.html for the detected
// task type, decoded attachments under assets/, README.md and LICENSE.
func (g *Generator) Generate(ctx context.Context, req Request) (Bundle, error) {
	kind := Detect(req.Brief)

	var page, title string
	switch kind {
	case TypeCaptchaSolver:
		title = "Captcha Solver"
		page = captchaPage()
	case TypeSumOfSales:
		seed := ExtractSeed(req.Brief)
		title = "Sales Summary " + seed
		page = salesPage(req.Brief, req.Round, seed)
	case TypeMarkdownToHTML:
		title = "Markdown to HTML Converter"
		page = markdownPage(req.Brief, req.Round)
	case TypeGitHubUserCreated:
		title = "GitHub User Info"
		page = githubUserPage(req.Brief, req.Round, ExtractSeed(req.Brief))
	default:
		title = "Generic Application"
		page = g.genericPage(ctx, req)
	}

	bundle := Bundle{"index.html": page}
	for _, att := range req.Attachments {
		content, err := DecodeAttachment(att.URL)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", att.Name, err)
		}
		bundle["assets/"+att.Name] = content
	}
	bundle["README.md"] = Readme(title, req.Brief, req.Checks)
	bundle["LICENSE"] = License(g.clock().Year(), g.owner)
	return bundle, nil
}

// genericPage prefers the LLM when configured and falls back to the static
// template on any failure.
func (g *Generator) genericPage(ctx context.Context, req Request) string {
	if g.llm == nil {
		return genericFallbackPage
	}
	page, err := g.llm.GeneratePage(ctx, req.Brief, req.Checks)
	if err != nil {
		g.logger.Warn("llm page generation failed, using fallback", "task", req.Task, "error", err)
		return genericFallbackPage
	}
	return page
}
