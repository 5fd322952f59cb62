package vaultutils_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/vault/docsapi"
	"github.com/papercomputeco/skillgate/pkg/vault/filesystem"
	"github.com/papercomputeco/skillgate/pkg/vault/inmemory"
	vaultutils "github.com/papercomputeco/skillgate/pkg/vault/utils"
)

var _ = Describe("NewStore", func() {
	ctx := context.Background()

	It("builds the in-memory vault", func() {
		s, err := vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{Backend: vaultutils.BackendInMemory})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&inmemory.Store{}))
	})

	It("builds the filesystem vault", func() {
		dir, err := os.MkdirTemp("", "vaultutils-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		s, err := vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{Backend: vaultutils.BackendFilesystem, Dir: dir})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&filesystem.Store{}))
	})

	It("builds the documents API vault", func() {
		s, err := vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{Backend: vaultutils.BackendDocsAPI, DocsURL: "http://docs:8000"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&docsapi.Store{}))
	})

	It("wraps backend configuration errors", func() {
		_, err := vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{Backend: vaultutils.BackendS3})
		Expect(err).To(MatchError(ContainSubstring("creating s3 vault: s3 bucket is required")))
	})

	It("rejects unknown backends", func() {
		_, err := vaultutils.NewStore(ctx, &vaultutils.NewStoreOpts{Backend: "ftp"})
		Expect(err).To(MatchError(ContainSubstring("unsupported vault backend: ftp")))
	})
})
