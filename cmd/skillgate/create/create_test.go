package createcmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	createcmder "github.com/papercomputeco/skillgate/cmd/skillgate/create"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
)

var _ = Describe("create command", func() {
	var (
		tmpDir   string
		skillDir string
		out      bytes.Buffer
	)

	write := func(rel, content string) string {
		path := filepath.Join(skillDir, filepath.FromSlash(rel))
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	execute := func(args ...string) error {
		cmd := createcmder.NewCreateCmd()
		cmd.Flags().Bool("debug", false, "")
		cmd.Flags().String("config-dir", tmpDir, "")
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		skillDir = GinkgoT().TempDir()
		out.Reset()
		write("SKILL.md", "# Weather\n")
	})

	It("provisions a skill into the local vault and registry", func() {
		main := write("main.py", "import json\n")
		lib := write("lib/fetch.py", "def fetch():\n    return 1\n")

		err := execute("weather",
			"--user", "alice",
			"--manifest", filepath.Join(skillDir, "SKILL.md"),
			"--root", skillDir,
			"--json",
			main, lib,
		)
		Expect(err).NotTo(HaveOccurred())

		var resp provision.Response
		Expect(json.Unmarshal(out.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("success"))
		Expect(resp.Skill.Name).To(Equal("weather"))
		Expect(resp.Skill.StoragePath).To(Equal("skills/weather"))

		vaultDir := filepath.Join(tmpDir, "vault", principal.NoTenant, "alice", "skills", "weather")
		Expect(filepath.Join(vaultDir, "MANIFEST")).To(BeARegularFile())
		Expect(filepath.Join(vaultDir, "scripts", "main.py")).To(BeARegularFile())
		Expect(filepath.Join(vaultDir, "scripts", "lib", "fetch.py")).To(BeARegularFile())
		Expect(filepath.Join(tmpDir, "skills.db")).To(BeARegularFile())
	})

	It("stores nothing when a script is rejected", func() {
		main := write("main.py", "import subprocess\n")

		err := execute("weather",
			"--user", "alice",
			"--manifest", filepath.Join(skillDir, "SKILL.md"),
			"--root", skillDir,
			main,
		)
		Expect(err).To(MatchError(ContainSubstring("rejected")))
		Expect(out.String()).To(ContainSubstring("Blocked import 'subprocess'"))
		Expect(filepath.Join(tmpDir, "vault", principal.NoTenant, "alice")).NotTo(BeADirectory())
	})

	It("reports malformed requests", func() {
		main := write("main.py", "x = 1\n")
		err := execute("Not A Name",
			"--user", "alice",
			"--manifest", filepath.Join(skillDir, "SKILL.md"),
			"--root", skillDir,
			main,
		)
		Expect(err).To(MatchError(provision.ErrInvalidRequest))
	})

	It("requires the manifest and user flags", func() {
		Expect(execute("weather")).To(HaveOccurred())
		Expect(execute("weather", "--user", "alice")).To(HaveOccurred())
	})

	It("fails on a missing manifest", func() {
		err := execute("weather", "--user", "alice", "--manifest", filepath.Join(skillDir, "missing.md"))
		Expect(err).To(MatchError(ContainSubstring("reading manifest")))
	})

	It("sends the skill to a remote server", func() {
		var got map[string]any
		var gotUser string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/skills"))
			gotUser = r.Header.Get("X-User-ID")
			Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"success","message":"Skill 'weather' created","skill":{"id":"1","name":"weather","storage_path":"skills/weather"}}`))
		}))
		defer ts.Close()

		main := write("main.py", "x = 1\n")
		err := execute("weather",
			"--user", "alice",
			"--manifest", filepath.Join(skillDir, "SKILL.md"),
			"--root", skillDir,
			"--remote",
			"--api-target", ts.URL,
			main,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotUser).To(Equal("alice"))
		Expect(got["name"]).To(Equal("weather"))
		Expect(got["manifest_text"]).To(Equal("# Weather\n"))
		Expect(got["scripts"]).To(ConsistOf(HaveKeyWithValue("path", "main.py")))
		Expect(out.String()).To(ContainSubstring("Skill 'weather' created"))
		Expect(filepath.Join(tmpDir, "skills.db")).NotTo(BeAnExistingFile())
	})
})
