package docsapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/vault"
	"github.com/papercomputeco/skillgate/pkg/vault/docsapi"
)

type recordedRequest struct {
	method   string
	path     string
	header   http.Header
	title    string
	dirPath  string
	filename string
	fileType string
	content  string
}

// fakeDocuments mimics the Documents API: POST creates, PUT .../file updates,
// GET .../file reads.
type fakeDocuments struct {
	mu       sync.Mutex
	docs     map[string]string
	requests []recordedRequest
}

func (f *fakeDocuments) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer GinkgoRecover()

	f.mu.Lock()
	defer f.mu.Unlock()

	rec := recordedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone()}

	if r.Method != http.MethodGet {
		Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
		rec.title = r.FormValue("title")
		rec.dirPath = r.FormValue("path")
		file, hdr, err := r.FormFile("file")
		Expect(err).NotTo(HaveOccurred())
		data, _ := io.ReadAll(file)
		rec.filename = hdr.Filename
		rec.fileType = hdr.Header.Get("Content-Type")
		rec.content = string(data)
	}
	f.requests = append(f.requests, rec)

	switch r.Method {
	case http.MethodPost:
		id := rec.dirPath + "/" + rec.title
		if _, ok := f.docs[id]; ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Document already exists at this path"}`)
			return
		}
		f.docs[id] = rec.content
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"doc-1"}`)

	case http.MethodPut:
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/documents/alice/"), "/file")
		if _, ok := f.docs[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.docs[id] = rec.content
		_, _ = io.WriteString(w, `{"data":{"id":"doc-1"}}`)

	case http.MethodGet:
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/documents/alice/"), "/file")
		content, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, content)
	}
}

var _ = Describe("Documents API Store", func() {
	var (
		ctx    context.Context
		fake   *fakeDocuments
		server *httptest.Server
		store  *docsapi.Store
		ref    vault.Ref
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeDocuments{docs: make(map[string]string)}
		server = httptest.NewServer(fake)

		var err error
		store, err = docsapi.NewStore(docsapi.Config{URL: server.URL + "/", APIKey: "secret"})
		Expect(err).NotTo(HaveOccurred())

		ref = vault.Ref{
			Principal: principal.Principal{UserID: "alice", TenantID: "acme"},
			Path:      "skills/weather/scripts/main.py",
		}
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires a URL", func() {
		_, err := docsapi.NewStore(docsapi.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("creates documents with multipart form data and internal headers", func() {
		id, err := store.Create(ctx, ref, []byte("print(1)"), "text/plain")
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("doc-1"))

		Expect(fake.requests).To(HaveLen(1))
		req := fake.requests[0]
		Expect(req.method).To(Equal(http.MethodPost))
		Expect(req.path).To(Equal("/api/documents/alice"))
		Expect(req.title).To(Equal("main.py"))
		Expect(req.dirPath).To(Equal("skills/weather/scripts"))
		Expect(req.filename).To(Equal("main.py"))
		Expect(req.fileType).To(Equal("text/plain"))
		Expect(req.content).To(Equal("print(1)"))
		Expect(req.header.Get("x-internal-api-key")).To(Equal("secret"))
		Expect(req.header.Get("x-user-id")).To(Equal("alice"))
		Expect(req.header.Get("x-tenant-id")).To(Equal("acme"))
	})

	It("maps 'already exists' to ErrConflict", func() {
		_, err := store.Create(ctx, ref, []byte("v1"), "text/plain")
		Expect(err).NotTo(HaveOccurred())

		_, err = store.Create(ctx, ref, []byte("v2"), "text/plain")
		Expect(err).To(MatchError(vault.ErrConflict))
	})

	It("upserts through PUT .../file", func() {
		_, err := vault.Upsert(ctx, store, ref, []byte("v1"), "text/plain")
		Expect(err).NotTo(HaveOccurred())
		_, err = vault.Upsert(ctx, store, ref, []byte("v2"), "text/plain")
		Expect(err).NotTo(HaveOccurred())

		last := fake.requests[len(fake.requests)-1]
		Expect(last.method).To(Equal(http.MethodPut))
		Expect(last.path).To(Equal("/api/documents/alice/skills/weather/scripts/main.py/file"))

		data, err := store.Get(ctx, ref)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("v2"))
	})

	It("omits the tenant header when there is no tenant", func() {
		ref.Principal.TenantID = ""
		_, err := store.Create(ctx, ref, []byte("v1"), "text/plain")
		Expect(err).NotTo(HaveOccurred())
		Expect(fake.requests[0].header.Values("x-tenant-id")).To(BeEmpty())
	})

	It("returns ErrNotFound for missing documents", func() {
		_, err := store.Get(ctx, ref)
		Expect(err).To(MatchError(vault.ErrNotFound))

		_, err = store.Update(ctx, ref, []byte("x"))
		Expect(err).To(MatchError(vault.ErrNotFound))
	})

	It("returns HTTPError for other failures", func() {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"disk full"}`)
		}))
		defer failing.Close()

		s, err := docsapi.NewStore(docsapi.Config{URL: failing.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Create(ctx, ref, []byte("x"), "text/plain")
		var httpErr *docsapi.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.Status).To(Equal(http.StatusInternalServerError))
		Expect(err.Error()).To(ContainSubstring("HTTP 500: disk full"))
	})
})
