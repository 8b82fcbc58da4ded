//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package filesystem_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/coverframe/pkg/filesystem"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir, name, want string
	}{
		{"", "Covers", "Covers"},
		{"/", "Covers", "/Covers"},
		{"Media/Games", "front.png", "Media/Games/front.png"},
		{"/a/b/", "c", "/a/b/c"},
	}

	for _, tt := range tests {
		if got := filesystem.Join(tt.dir, tt.name); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func TestLocalSession_ListAndFetch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	g.Expect(os.Mkdir(filepath.Join(dir, "Covers"), 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(dir, "front.png"), []byte("png"), 0o644)).To(Succeed())

	session := filesystem.NewLocalSession()
	defer session.Close()

	entries, err := session.List(context.Background(), filepath.ToSlash(dir))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(entries).To(HaveLen(2))

	byName := map[string]filesystem.Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	g.Expect(byName["Covers"].IsDir).To(BeTrue())
	g.Expect(byName["front.png"].IsDir).To(BeFalse())
	g.Expect(byName["front.png"].Size).To(Equal(int64(3)))

	data, err := session.Fetch(context.Background(), filepath.ToSlash(filepath.Join(dir, "front.png")))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("png"))
}

func TestLocalSession_MissingDirectory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := filesystem.NewLocalSession().List(context.Background(), filepath.ToSlash(filepath.Join(t.TempDir(), "nope")))
	g.Expect(err).To(MatchError(os.ErrNotExist))
}

func TestLocalSession_HonorsCancelledContext(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := filesystem.NewLocalSession().List(ctx, t.TempDir())
	g.Expect(err).To(MatchError(context.Canceled))
}

func TestTargetOpener_Local(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	session, err := filesystem.NewTargetOpener(&filesystem.Target{Scheme: filesystem.SchemeLocal, Path: "/"}).Open(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(session).To(BeAssignableToTypeOf(&filesystem.LocalSession{}))
	g.Expect(session.Close()).To(Succeed())
}

func TestTargetOpener_UnknownScheme(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := filesystem.NewTargetOpener(&filesystem.Target{Scheme: "smb"}).Open(context.Background())
	g.Expect(err).Should(HaveOccurred())
}

func TestMockFileSystem_ListIsByteOrdered(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/c/img10.png", nil)
	fs.AddFile("/c/img2.png", nil)
	fs.AddDir("/c/Sub")

	entries, err := fs.List(context.Background(), "c")
	g.Expect(err).ShouldNot(HaveOccurred())

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}

	g.Expect(names).To(Equal([]string{"Sub", "img10.png", "img2.png"}))
	g.Expect(fs.ListCalls()).To(Equal([]string{"/c"}))
}

func TestMockFileSystem_FailuresAndRemove(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errDenied := errors.New("permission denied")

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/a/b.png", []byte("b"))
	fs.FailFetch("/a/b.png", errDenied)

	_, err := fs.Fetch(context.Background(), "/a/b.png")
	g.Expect(err).To(MatchError(errDenied))

	_, err = fs.List(context.Background(), "/a/b.png")
	g.Expect(err).To(MatchError(filesystem.ErrNotDirectory))

	fs.Remove("/a")

	_, err = fs.List(context.Background(), "/a")
	g.Expect(err).To(MatchError(os.ErrNotExist))
}

func TestMockFileSystem_DoubleCloseFails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()

	session, err := fs.Open(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(session.Close()).To(Succeed())
	g.Expect(session.Close()).To(MatchError(os.ErrClosed))

	_, err = fs.Open(context.Background())
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(fs.Closed()).To(BeFalse())
}

func TestRateLimitedLister(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/a")

	g.Expect(filesystem.NewRateLimitedLister(fs, 0)).To(BeIdenticalTo(fs))

	lister := filesystem.NewRateLimitedLister(fs, 1000)
	for range 3 {
		_, err := lister.List(context.Background(), "/a")
		g.Expect(err).ShouldNot(HaveOccurred())
	}

	g.Expect(fs.ListCalls()).To(HaveLen(3))

	// One token left in the burst at most; a cancelled context fails the wait
	slow := filesystem.NewRateLimitedLister(fs, 0.001)
	_, err := slow.List(context.Background(), "/a")
	g.Expect(err).ShouldNot(HaveOccurred())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = slow.List(ctx, "/a")
	g.Expect(err).To(MatchError(context.Canceled))
}
