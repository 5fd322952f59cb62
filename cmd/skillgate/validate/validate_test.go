package validatecmder_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	validatecmder "github.com/papercomputeco/skillgate/cmd/skillgate/validate"
)

var _ = Describe("validate command", func() {
	var (
		tmpDir string
		out    bytes.Buffer
	)

	write := func(name, src string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(src), 0o600)).To(Succeed())
		return path
	}

	execute := func(args ...string) error {
		cmd := validatecmder.NewValidateCmd()
		cmd.Flags().Bool("debug", false, "")
		cmd.Flags().String("config-dir", tmpDir, "")
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out.Reset()
	})

	It("accepts clean scripts", func() {
		path := write("main.py", "import json\nprint(json.dumps({}))\n")
		Expect(execute(path)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("main.py"))
	})

	It("fails and lists the diagnostics of unsafe scripts", func() {
		good := write("good.py", "x = 1\n")
		bad := write("bad.py", "import os\neval('1')\n")

		err := execute(good, bad)
		Expect(err).To(MatchError("1 of 2 file(s) failed validation"))
		Expect(out.String()).To(ContainSubstring("Line 1: Blocked import 'os'"))
		Expect(out.String()).To(ContainSubstring("Line 2: Blocked call 'eval()'"))
	})

	It("prints JSON results", func() {
		bad := write("bad.py", "import subprocess\n")
		Expect(execute("--json", bad)).To(HaveOccurred())

		var results []map[string]any
		Expect(json.Unmarshal(out.Bytes(), &results)).To(Succeed())
		Expect(results).To(HaveLen(1))
		Expect(results[0]["valid"]).To(BeFalse())
		Expect(results[0]["errors"]).To(ConsistOf("Line 1: Blocked import 'subprocess'"))
	})

	It("reads stdin for -", func() {
		cmd := validatecmder.NewValidateCmd()
		cmd.Flags().Bool("debug", false, "")
		cmd.Flags().String("config-dir", tmpDir, "")
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader("x.__class__\n"))
		cmd.SetArgs([]string{"-"})

		Expect(cmd.Execute()).To(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("<stdin>"))
		Expect(out.String()).To(ContainSubstring("Blocked attribute"))
	})

	It("uses a custom policy file", func() {
		policy := write("policy.yaml", "modules: [requests]\n")
		script := write("main.py", "import os\n")
		Expect(execute("--policy", policy, script)).To(Succeed())
	})

	It("fails on missing files", func() {
		err := execute(filepath.Join(tmpDir, "missing.py"))
		Expect(err).To(MatchError(ContainSubstring("reading")))
	})

	It("requires at least one file", func() {
		Expect(execute()).To(HaveOccurred())
	})
})
