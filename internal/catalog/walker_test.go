//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package catalog_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/coverframe/internal/catalog"
	"github.com/joe/coverframe/pkg/filesystem"
)

var errUnreachable = errors.New("connection reset by peer")

func newMatcher(g *WithT, rule catalog.MatchRule) *catalog.Matcher {
	m, err := catalog.NewMatcher(rule, nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	return m
}

func addFiles(fs *filesystem.MockFileSystem, paths ...string) {
	for _, p := range paths {
		fs.AddFile(p, []byte("img:"+p))
	}
}

func TestWalk_NaturalOrderAndExtensionFilter(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs, "/Covers/a.png", "/Covers/b.txt", "/Covers/c2.jpg", "/Covers/c10.jpg")

	walker := catalog.NewWalker(fs, nil)
	got, report, err := walker.Walk(context.Background(), newMatcher(g, catalog.MatchRule{
		Root:    "/Covers",
		Include: []string{".*"},
	}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{"/Covers/a.png", "/Covers/c2.jpg", "/Covers/c10.jpg"}))
	g.Expect(report.Rejected).To(Equal(1))
	g.Expect(report.Listed).To(Equal(1))
}

func TestWalk_DepthFirstInterleavesDirectoriesAndLeaves(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs,
		"/root/a1.png",
		"/root/a10/x.png",
		"/root/a2/y.png",
		"/root/a2/deep/z.png",
		"/root/a3.png",
	)

	got, _, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{Root: "/root"}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{
		"/root/a1.png",
		"/root/a2/deep/z.png",
		"/root/a2/y.png",
		"/root/a3.png",
		"/root/a10/x.png",
	}))
}

func TestWalk_ExcludedDirectoryIsNeverListed(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs, "/media/hidden/z.png", "/media/hidden/sub/w.png", "/media/visible/z.png")

	got, report, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{
		Root:    "/media",
		Include: []string{"z"},
		Exclude: []string{"/hidden"},
	}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{"/media/visible/z.png"}))
	g.Expect(fs.ListCalls()).To(Equal([]string{"/media", "/media/visible"}))
	g.Expect(report.Pruned).To(Equal([]catalog.PrunedDir{{Path: "/media/hidden", Pattern: "/hidden"}}))
}

func TestWalk_ExcludedRootReturnsEmptyWithoutListing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs, "/Trash/a.png")

	got, _, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{
		Root:    "/Trash",
		Exclude: []string{"Trash"},
	}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(BeEmpty())
	g.Expect(fs.ListCalls()).To(BeEmpty())
}

func TestWalk_SubdirectoryFailureSkipsOnlyThatSubtree(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs, "/r/a/1.png", "/r/b/2.png", "/r/b/inner/3.png", "/r/c/4.png")
	fs.FailList("/r/b", errUnreachable)

	got, report, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{Root: "/r"}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{"/r/a/1.png", "/r/c/4.png"}))
	g.Expect(report.Skipped).To(HaveLen(1))
	g.Expect(report.Skipped[0].Path).To(Equal("/r/b"))
	g.Expect(report.Skipped[0].Err).To(MatchError(errUnreachable))
}

func TestWalk_RootFailureIsHard(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.FailList("/gone", errUnreachable)

	got, _, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{Root: "/gone"}))

	var rootErr *catalog.RootError
	g.Expect(errors.As(err, &rootErr)).To(BeTrue())
	g.Expect(rootErr.Root).To(Equal("/gone"))
	g.Expect(err).To(MatchError(errUnreachable))
	g.Expect(got).To(BeNil())
}

func TestWalk_MissingRootIsHard(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()

	_, _, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{Root: "/nope"}))

	var rootErr *catalog.RootError
	g.Expect(errors.As(err, &rootErr)).To(BeTrue())
}

func TestWalk_IsDeterministic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs,
		"/lib/Game 10/Covers/front.png",
		"/lib/Game 9/Covers/front.png",
		"/lib/Game 9/Covers/back.png",
		"/lib/game 1/Covers/front.jpg",
		"/lib/Game 100/cover.bmp",
	)

	m := newMatcher(g, catalog.MatchRule{Root: "/lib"})
	walker := catalog.NewWalker(fs, nil)

	first, _, err := walker.Walk(context.Background(), m)
	g.Expect(err).ShouldNot(HaveOccurred())

	second, _, err := walker.Walk(context.Background(), m)
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(second).To(Equal(first))
	g.Expect(first).To(Equal([]string{
		"/lib/Game 9/Covers/back.png",
		"/lib/Game 9/Covers/front.png",
		"/lib/Game 10/Covers/front.png",
		"/lib/Game 100/cover.bmp",
		"/lib/game 1/Covers/front.jpg",
	}))
}

func TestWalk_DeepTreeDoesNotRecurse(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()

	deep := "/deep"
	for range 200 {
		deep += "/d"
	}
	addFiles(fs, deep+"/bottom.png")

	got, report, err := catalog.NewWalker(fs, nil).Walk(context.Background(), newMatcher(g, catalog.MatchRule{Root: "/deep"}))

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{deep + "/bottom.png"}))
	g.Expect(report.Listed).To(Equal(201))
}

func TestWalk_CancelledContextStops(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	addFiles(fs, "/r/a.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := catalog.NewWalker(fs, nil).Walk(ctx, newMatcher(g, catalog.MatchRule{Root: "/r"}))
	g.Expect(err).To(MatchError(context.Canceled))
}
