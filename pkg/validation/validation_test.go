package validation_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/validation"
)

var _ = Describe("Gate", func() {
	var (
		ctx  context.Context
		gate *validation.Gate
	)

	BeforeEach(func() {
		ctx = context.Background()
		gate = validation.NewDefaultGate()
	})

	validate := func(src string) validation.Result {
		return gate.Validate(ctx, policy.SourceUnit{Filename: "main.py", Text: src})
	}

	It("rejects a blocked import", func() {
		result := validate("import os\nos.system('ls')")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors()).To(Equal([]string{"Line 1: Blocked import 'os'"}))
	})

	It("rejects a dotted import of a blocked root", func() {
		result := validate("import os.path")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors()).To(ConsistOf(ContainSubstring("'os.path'")))
		Expect(result.Diagnostics[0].Line).To(Equal(1))
	})

	It("accepts safe code", func() {
		result := validate("def hello():\n    return {'ok': True}")
		Expect(result.Valid).To(BeTrue())
		Expect(result.Diagnostics).To(BeEmpty())
		Expect(result.Errors()).To(BeEmpty())
	})

	It("rejects eval", func() {
		result := validate("eval('1+1')")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors()).To(Equal([]string{"Line 1: Blocked call 'eval()'"}))
	})

	It("reports every blocked attribute", func() {
		result := validate("x.__class__.__bases__")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors()).To(HaveLen(2))
		Expect(result.Errors()).To(ContainElement(ContainSubstring("__class__")))
		Expect(result.Errors()).To(ContainElement(ContainSubstring("__bases__")))
	})

	It("is deterministic for identical input", func() {
		src := "import json\nimport socket\nprint(vars())\n"
		first := validate(src)
		second := validate(src)
		Expect(second).To(Equal(first))
	})

	It("rejects unparsable source", func() {
		result := validate("def broken(:\n")
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors()).To(ConsistOf(HavePrefix("Line 1: Syntax error: ")))
	})

	It("uses a custom denylist", func() {
		d, err := policy.NewDenylist([]string{"requests"}, []string{"open"}, []string{"__dict__"})
		Expect(err).NotTo(HaveOccurred())
		g := validation.NewGate(policy.NewEngine(d, nil))

		result := g.Validate(ctx, policy.SourceUnit{Filename: "a.py", Text: "import os\nopen('x')\n"})
		Expect(result.Errors()).To(Equal([]string{"Line 2: Blocked call 'open()'"}))
	})
})
