package gitdeploy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagesmith/pagesmith/internal/service/sitegen"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func noSleep(time.Duration) {}

func TestSanitizeRepoName(t *testing.T) {
	cases := map[string]string{
		"My Task! v2":         "my-task-v2",
		"captcha-solver-x1":   "captcha-solver-x1",
		"  spaced   out  ":    "spaced-out",
		"under_scored_name":   "under-scored-name",
		"Crazy@#$Characters!": "crazycharacters",
	}
	for input, want := range cases {
		if got := SanitizeRepoName(input); got != want {
			t.Fatalf("SanitizeRepoName(%q) = %q, want %q", input, got, want)
		}
	}

	long := strings.Repeat("a", 150)
	if got := SanitizeRepoName(long); len(got) != 100 {
		t.Fatalf("expected 100 char cap, got %d", len(got))
	}
}

func TestPagesURL(t *testing.T) {
	svc, err := New("token", "octocat", testLogger())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	want := "https://octocat.github.io/my-task/"
	if got := svc.PagesURL("my-task"); got != want {
		t.Fatalf("PagesURL = %q, want %q", got, want)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "octocat", testLogger()); err == nil {
		t.Fatal("expected error without token")
	}
	if _, err := New("token", " ", testLogger()); err == nil {
		t.Fatal("expected error without username")
	}
}

// githubStub simulates the subset of the GitHub REST API the service touches.
type githubStub struct {
	mux       *http.ServeMux
	repoExist bool
	puts      map[string]int
	created   bool
	pagesOn   bool
}

func newGitHubStub(t *testing.T, owner, repo string) *githubStub {
	t.Helper()
	stub := &githubStub{mux: http.NewServeMux(), puts: make(map[string]int)}
	base := fmt.Sprintf("/repos/%s/%s", owner, repo)

	stub.mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		if !stub.repoExist {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		fmt.Fprintf(w, `{"name":%q,"html_url":"https://github.com/%s/%s"}`, repo, owner, repo)
	})
	stub.mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		stub.created = true
		stub.repoExist = true
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"name":%q,"html_url":"https://github.com/%s/%s"}`, repo, owner, repo)
	})
	stub.mux.HandleFunc(base+"/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ref":"refs/heads/main","object":{"sha":"mainsha","type":"commit"}}`)
	})
	stub.mux.HandleFunc(base+"/git/ref/heads/gh-pages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ref":"refs/heads/gh-pages","object":{"sha":"pagessha","type":"commit"}}`)
	})
	stub.mux.HandleFunc(base+"/git/refs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"ref":"refs/heads/gh-pages","object":{"sha":"mainsha","type":"commit"}}`)
	})
	stub.mux.HandleFunc(base+"/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, base+"/contents/")
		switch r.Method {
		case http.MethodGet:
			if stub.puts[path] == 0 {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
				return
			}
			fmt.Fprintf(w, `{"type":"file","path":%q,"sha":"filesha"}`, path)
		case http.MethodPut:
			stub.puts[path]++
			fmt.Fprint(w, `{"commit":{"sha":"commitsha"}}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	stub.mux.HandleFunc(base+"/pages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if !stub.pagesOn {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
				return
			}
			fmt.Fprint(w, `{"url":"https://api.github.com/repos/o/r/pages"}`)
		case http.MethodPost:
			stub.pagesOn = true
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"url":"https://api.github.com/repos/o/r/pages"}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return stub
}

func newStubbedService(t *testing.T, stub *githubStub) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.mux)
	t.Cleanup(srv.Close)

	svc, err := New("token", "octocat", testLogger(),
		WithBaseURL(srv.URL+"/"),
		WithSleep(noSleep),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return svc, srv
}

func TestCreateAndDeploy(t *testing.T) {
	stub := newGitHubStub(t, "octocat", "captcha-solver-x1")
	svc, _ := newStubbedService(t, stub)

	bundle := sitegen.Bundle{
		"index.html": "<html></html>",
		"LICENSE":    "MIT License",
	}
	result, err := svc.CreateAndDeploy(context.Background(), "Captcha Solver X1", bundle)
	if err != nil {
		t.Fatalf("CreateAndDeploy returned error: %v", err)
	}

	if !stub.created {
		t.Fatal("expected repository creation")
	}
	if stub.puts["index.html"] != 1 || stub.puts["LICENSE"] != 1 {
		t.Fatalf("expected each file uploaded once, got %v", stub.puts)
	}
	if !stub.pagesOn {
		t.Fatal("expected pages to be enabled")
	}
	if result.RepoURL != "https://github.com/octocat/captcha-solver-x1" {
		t.Fatalf("unexpected repo url %q", result.RepoURL)
	}
	if result.CommitSHA != "pagessha" {
		t.Fatalf("unexpected commit sha %q", result.CommitSHA)
	}
	if result.PagesURL != "https://octocat.github.io/captcha-solver-x1/" {
		t.Fatalf("unexpected pages url %q", result.PagesURL)
	}
}

func TestUpdateOverwritesExistingFiles(t *testing.T) {
	stub := newGitHubStub(t, "octocat", "captcha-solver-x1")
	stub.repoExist = true
	stub.puts["index.html"] = 1
	svc, _ := newStubbedService(t, stub)

	bundle := sitegen.Bundle{"index.html": "<html>v2</html>"}
	result, err := svc.Update(context.Background(), "captcha-solver-x1", bundle)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if stub.puts["index.html"] != 2 {
		t.Fatalf("expected update PUT for existing file, got %d", stub.puts["index.html"])
	}
	if stub.created {
		t.Fatal("update must not create a repository")
	}
	if result.CommitSHA != "pagessha" {
		t.Fatalf("unexpected commit sha %q", result.CommitSHA)
	}
}

func TestWaitForPagesLive(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc, err := New("token", "octocat", testLogger(), WithSleep(noSleep))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !svc.WaitForPagesLive(context.Background(), srv.URL, 5) {
		t.Fatal("expected pages to report live")
	}
	if hits != 3 {
		t.Fatalf("expected 3 polls, got %d", hits)
	}
}

func TestWaitForPagesLiveGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc, err := New("token", "octocat", testLogger(), WithSleep(noSleep))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if svc.WaitForPagesLive(context.Background(), srv.URL, 2) {
		t.Fatal("expected liveness check to give up")
	}
}

func TestUpdateDecodesUploadedContent(t *testing.T) {
	stub := newGitHubStub(t, "octocat", "task-a")
	stub.repoExist = true
	var body struct {
		Message string `json:"message"`
		Branch  string `json:"branch"`
		Content string `json:"content"`
	}
	base := "/repos/octocat/task-a/contents/index.html"
	captured := false
	stub.mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode upload body: %v", err)
			}
			captured = true
			fmt.Fprint(w, `{"commit":{"sha":"commitsha"}}`)
		}
	})
	svc, _ := newStubbedService(t, stub)

	if _, err := svc.Update(context.Background(), "task-a", sitegen.Bundle{"index.html": "<html></html>"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !captured {
		t.Fatal("expected an upload PUT")
	}
	if body.Branch != "gh-pages" {
		t.Fatalf("expected gh-pages branch, got %q", body.Branch)
	}
	if !strings.HasPrefix(body.Message, "Add ") {
		t.Fatalf("expected add commit message, got %q", body.Message)
	}
	if body.Content == "" {
		t.Fatal("expected base64 content in upload body")
	}
}
