package gitdeploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v59/github"

	"github.com/pagesmith/pagesmith/internal/service/sitegen"
)

const pagesBranch = "gh-pages"

// Result describes where a bundle ended up.
type Result struct {
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

// Service pushes generated bundles to GitHub and serves them via Pages.
type Service struct {
	client   *github.Client
	httpc    *http.Client
	username string
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// Option customises service construction.
type Option func(*Service)

// WithBaseURL points the GitHub client at a different API endpoint, used in tests.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		if parsed, err := url.Parse(base); err == nil {
			s.client.BaseURL = parsed
		}
	}
}

// WithHTTPClient overrides the client used for Pages liveness polling.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Service) {
		if h != nil {
			s.httpc = h
		}
	}
}

// WithSleep overrides the settle delay between GitHub operations.
func WithSleep(fn func(time.Duration)) Option {
	return func(s *Service) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// New constructs a Service. Token and username are both required.
func New(token, username string, logger *slog.Logger, opts ...Option) (*Service, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(username) == "" {
		return nil, errors.New("github token and username must be configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		client:   github.NewClient(nil).WithAuthToken(token),
		httpc:    &http.Client{Timeout: 10 * time.Second},
		username: username,
		logger:   logger,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var (
	repoNameStrip    = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	repoNameCollapse = regexp.MustCompile(`[\s_]+`)
)

// SanitizeRepoName converts a task name into a valid repository slug.
func SanitizeRepoName(taskName string) string {
	name := repoNameStrip.ReplaceAllString(taskName, "")
	name = repoNameCollapse.ReplaceAllString(name, "-")
	name = strings.Trim(strings.ToLower(name), "-")
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// PagesURL returns the public Pages URL for a repository slug.
func (s *Service) PagesURL(repoName string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", s.username, repoName)
}

// CreateAndDeploy creates a fresh repository for the task, pushes the bundle
// to the gh-pages branch and enables Pages. Any repository with the same name
// is deleted first so round-one deployments start clean.
func (s *Service) CreateAndDeploy(ctx context.Context, taskName string, files sitegen.Bundle) (Result, error) {
	repoName := SanitizeRepoName(taskName)
	s.logger.Info("creating repository", "repo", repoName)

	if err := s.deleteIfExists(ctx, repoName); err != nil {
		return Result{}, err
	}

	repo, _, err := s.client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(repoName),
		Description: github.String("Auto-generated app for " + taskName),
		Private:     github.Bool(false),
		AutoInit:    github.Bool(true),
	})
	if err != nil {
		return Result{}, fmt.Errorf("create repository: %w", err)
	}
	// Give GitHub a moment to finish the auto-init commit.
	s.sleep(2 * time.Second)

	mainRef, _, err := s.client.Git.GetRef(ctx, s.username, repoName, "heads/main")
	if err != nil {
		return Result{}, fmt.Errorf("resolve main ref: %w", err)
	}
	_, _, err = s.client.Git.CreateRef(ctx, s.username, repoName, &github.Reference{
		Ref:    github.String("refs/heads/" + pagesBranch),
		Object: &github.GitObject{SHA: mainRef.Object.SHA},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create %s branch: %w", pagesBranch, err)
	}

	if err := s.uploadFiles(ctx, repoName, files); err != nil {
		return Result{}, err
	}
	if err := s.enablePages(ctx, repoName); err != nil {
		return Result{}, err
	}

	commitSHA, err := s.branchHead(ctx, repoName)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RepoURL:   repo.GetHTMLURL(),
		CommitSHA: commitSHA,
		PagesURL:  s.PagesURL(repoName),
	}
	s.logger.Info("deployment complete", "repo", repoName, "pages_url", result.PagesURL)
	return result, nil
}

// Update pushes the bundle onto an existing repository's gh-pages branch.
func (s *Service) Update(ctx context.Context, taskName string, files sitegen.Bundle) (Result, error) {
	repoName := SanitizeRepoName(taskName)
	s.logger.Info("updating repository", "repo", repoName)

	repo, _, err := s.client.Repositories.Get(ctx, s.username, repoName)
	if err != nil {
		return Result{}, fmt.Errorf("load repository: %w", err)
	}
	if err := s.uploadFiles(ctx, repoName, files); err != nil {
		return Result{}, err
	}
	commitSHA, err := s.branchHead(ctx, repoName)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RepoURL:   repo.GetHTMLURL(),
		CommitSHA: commitSHA,
		PagesURL:  s.PagesURL(repoName),
	}
	s.logger.Info("update complete", "repo", repoName, "pages_url", result.PagesURL)
	return result, nil
}

// WaitForPagesLive polls the Pages URL until it responds 200 or attempts run
// out. Deployments never fail on a negative answer; Pages builds lag behind.
func (s *Service) WaitForPagesLive(ctx context.Context, pagesURL string, maxAttempts int) bool {
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pagesURL, nil)
		if err != nil {
			return false
		}
		resp, err := s.httpc.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			s.sleep(4 * time.Second)
		}
	}
	return false
}

func (s *Service) deleteIfExists(ctx context.Context, repoName string) error {
	_, resp, err := s.client.Repositories.Get(ctx, s.username, repoName)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("check existing repository: %w", err)
	}
	s.logger.Info("deleting existing repository", "repo", repoName)
	if _, err := s.client.Repositories.Delete(ctx, s.username, repoName); err != nil {
		return fmt.Errorf("delete existing repository: %w", err)
	}
	// Deletion propagates asynchronously on GitHub's side.
	s.sleep(3 * time.Second)
	return nil
}

// uploadFiles writes every bundle file onto the pages branch, updating files
// that already exist (the auto-init README in particular).
func (s *Service) uploadFiles(ctx context.Context, repoName string, files sitegen.Bundle) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		content := files[path]
		existing, _, resp, err := s.client.Repositories.GetContents(ctx, s.username, repoName, path,
			&github.RepositoryContentGetOptions{Ref: pagesBranch})
		switch {
		case err == nil && existing != nil:
			opts := &github.RepositoryContentFileOptions{
				Message: github.String("Update " + path),
				Content: []byte(content),
				SHA:     existing.SHA,
				Branch:  github.String(pagesBranch),
			}
			if _, _, err := s.client.Repositories.UpdateFile(ctx, s.username, repoName, path, opts); err != nil {
				return fmt.Errorf("update %s: %w", path, err)
			}
		case resp != nil && resp.StatusCode == http.StatusNotFound:
			opts := &github.RepositoryContentFileOptions{
				Message: github.String("Add " + path),
				Content: []byte(content),
				Branch:  github.String(pagesBranch),
			}
			if _, _, err := s.client.Repositories.CreateFile(ctx, s.username, repoName, path, opts); err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
		default:
			return fmt.Errorf("inspect %s: %w", path, err)
		}
	}
	return nil
}

func (s *Service) enablePages(ctx context.Context, repoName string) error {
	if _, resp, err := s.client.Repositories.GetPagesInfo(ctx, s.username, repoName); err == nil {
		s.logger.Info("pages already enabled", "repo", repoName)
		return nil
	} else if resp != nil && resp.StatusCode != http.StatusNotFound {
		s.logger.Warn("pages status check failed", "repo", repoName, "error", err)
	}

	// The branch needs to be visible to the Pages API before enabling.
	s.sleep(2 * time.Second)

	_, resp, err := s.client.Repositories.EnablePages(ctx, s.username, repoName, &github.Pages{
		Source: &github.PagesSource{
			Branch: github.String(pagesBranch),
			Path:   github.String("/"),
		},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			s.logger.Info("pages already enabled", "repo", repoName)
			return nil
		}
		// Pages activation is best-effort; the deployment itself succeeded.
		s.logger.Warn("could not enable pages, may need manual activation", "repo", repoName, "error", err)
		return nil
	}
	s.logger.Info("pages enabled", "repo", repoName)
	s.sleep(3 * time.Second)
	return nil
}

func (s *Service) branchHead(ctx context.Context, repoName string) (string, error) {
	ref, _, err := s.client.Git.GetRef(ctx, s.username, repoName, "heads/"+pagesBranch)
	if err != nil {
		return "", fmt.Errorf("resolve %s head: %w", pagesBranch, err)
	}
	return ref.Object.GetSHA(), nil
}
