//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexflint/go-arg"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/coverframe/internal/catalog"
	"github.com/joe/coverframe/internal/config"
	"github.com/joe/coverframe/pkg/filesystem"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return p
}

func baseConfig(configPath string) *config.Config {
	return &config.Config{
		ConfigPath: configPath,
		Interval:   config.DefaultInterval,
		Output:     config.DefaultOutput,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func TestPostProcessConfig_ResolvesMatchersAndTarget(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, `
server: sftp://joe@nas.local:2222/Media
sort_order: in_order
list_rate: 5
matchers:
  - root: Games
    include: ["Zelda"]
    exclude: ["/Trash"]
    cover_dirs: ["Covers"]
  - root: /absolute/Art
`)

	cfg, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(cfg.Target.Scheme).To(Equal(filesystem.SchemeSFTP))
	g.Expect(cfg.Target.User).To(Equal("joe"))
	g.Expect(cfg.Target.Port).To(Equal(2222))
	g.Expect(cfg.Order).To(Equal(catalog.InOrder))
	g.Expect(cfg.File.ListRate).To(Equal(5.0))
	g.Expect(cfg.Matchers).To(Equal([]catalog.MatchRule{
		{Root: "Media/Games", Include: []string{"Zelda"}, Exclude: []string{"/Trash"}, CoverDirs: []string{"Covers"}},
		{Root: "/absolute/Art"},
	}))
}

func TestPostProcessConfig_SortFlagOverridesFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, "server: /srv/covers\nsort_order: in_order\nmatchers: [{root: a}]\n")

	cfg := baseConfig(p)
	reverse := catalog.Reverse
	cfg.Sort = &reverse

	cfg, err := config.PostProcessConfig(cfg)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(cfg.Order).To(Equal(catalog.Reverse))
	g.Expect(cfg.Matchers[0].Root).To(Equal("/srv/covers/a"))
}

func TestPostProcessConfig_DefaultsToRandom(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, "server: /srv\nmatchers: [{root: /srv}]\n")

	cfg, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(cfg.Order).To(Equal(catalog.Random))
}

func TestPostProcessConfig_LegacyKeys(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, `{
    "ftp_server": "192.168.1.10",
    "ftp_user_name": "joe",
    "ftp_user_password": "secret",
    "base_dirs": ["Media/Games", "Media/Films"],
    "cover_dirs": ["Covers"],
    "include": [],
    "exclude": ["Trash"]
}`)

	cfg, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(cfg.Target.Scheme).To(Equal(filesystem.SchemeFTP))
	g.Expect(cfg.Target.Host).To(Equal("192.168.1.10"))
	g.Expect(cfg.Target.User).To(Equal("joe"))
	g.Expect(cfg.Target.Password).To(Equal("secret"))
	g.Expect(cfg.Matchers).To(HaveLen(2))
	g.Expect(cfg.Matchers[1].Root).To(Equal("Media/Films"))
	g.Expect(cfg.Matchers[1].CoverDirs).To(Equal([]string{"Covers"}))
	g.Expect(cfg.Matchers[1].Exclude).To(Equal([]string{"Trash"}))
}

func TestPostProcessConfig_LegacyFiltersMatchLiterally(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, `{
    "ftp_server": "nas",
    "base_dirs": ["/G"],
    "include": ["(USA)"],
    "exclude": ["C++"]
}`)

	cfg, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).ShouldNot(HaveOccurred())

	_, err = catalog.NewCycle(catalog.Options{Rules: cfg.Matchers, Order: catalog.InOrder})
	g.Expect(err).ShouldNot(HaveOccurred())

	m, err := catalog.NewMatcher(cfg.Matchers[0], nil)
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(m.MatchLeaf("/G/Covers/Zelda (USA).png").Accepted()).To(BeTrue())
	g.Expect(m.MatchLeaf("/G/Covers/Zelda USA.png").Reason).To(Equal(catalog.RejectedInclude))
	g.Expect(m.MatchLeaf("/G/C++ Games/Zelda (USA).png").Reason).To(Equal(catalog.RejectedExclude))
	g.Expect(m.MatchLeaf("/G/CCC/Zelda (USA).png").Accepted()).To(BeTrue())
}

func TestPostProcessConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"empty server", "server: ''\nmatchers: [{root: a}]\n"},
		{"no matchers", "server: /srv\n"},
		{"bad sort order", "server: /srv\nsort_order: shuffled\nmatchers: [{root: a}]\n"},
		{"bad scheme", "server: http://example.com\nmatchers: [{root: a}]\n"},
		{"negative rate", "server: /srv\nlist_rate: -1\nmatchers: [{root: a}]\n"},
		{"not yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			_, err := config.PostProcessConfig(baseConfig(writeConfig(t, tt.content)))
			g.Expect(err).Should(HaveOccurred())
		})
	}
}

func TestPostProcessConfig_EmptyServerIsConfigError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, "matchers: [{root: a}]\n")

	_, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).To(MatchError(catalog.ErrInvalidConfig))
	g.Expect(err).To(MatchError(config.ErrNoServer))
}

func TestPostProcessConfig_RejectsBadInterval(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := baseConfig(writeConfig(t, "server: /srv\nmatchers: [{root: a}]\n"))
	cfg.Interval = -time.Second

	_, err := config.PostProcessConfig(cfg)
	g.Expect(err).To(MatchError(catalog.ErrInvalidConfig))
}

func TestPostProcessConfig_MissingFileIsCreated(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := filepath.Join(t.TempDir(), "config.yaml")

	_, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).To(MatchError(config.ErrConfigCreated))
	g.Expect(p).Should(BeAnExistingFile())

	file, err := config.LoadFile(p)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(file).To(Equal(config.DefaultFile()))
}

func TestPostProcessConfig_InitRefusesToOverwrite(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, "server: /srv\n")

	cfg := baseConfig(p)
	cfg.Init = true

	_, err := config.PostProcessConfig(cfg)
	g.Expect(err).Should(HaveOccurred())
	g.Expect(err).ShouldNot(MatchError(config.ErrConfigCreated))

	data, err := os.ReadFile(p)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("server: /srv\n"))
}

func TestPostProcessConfig_SeparateCredentialsFillURL(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	p := writeConfig(t, "server: sftp://nas.local/\nuser: joe\npassword: pw\nmatchers: [{root: /x}]\n")

	cfg, err := config.PostProcessConfig(baseConfig(p))
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(cfg.Target.User).To(Equal("joe"))
	g.Expect(cfg.Target.Password).To(Equal("pw"))
}

func TestSortFlagUnmarshalsThroughSortOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var cfg config.Config

	p, err := arg.NewParser(arg.Config{}, &cfg)
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(p.Parse([]string{"--sort", "in-order"})).To(Succeed())
	g.Expect(cfg.Sort).ShouldNot(BeNil())
	g.Expect(*cfg.Sort).To(Equal(catalog.InOrder))

	g.Expect(p.Parse([]string{"--sort", "shuffled"})).ShouldNot(Succeed())
}

func TestConfigDescriptionAndVersion(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}

	if cfg.Description() == "" {
		t.Error("Description() returned empty string")
	}

	if cfg.Version() != "coverframe 1.0.0" {
		t.Errorf("Version() = %q", cfg.Version())
	}
}
