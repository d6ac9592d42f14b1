package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/revelaction/signpose/annotate"
	"github.com/revelaction/signpose/cache"
	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/render"
	"github.com/revelaction/signpose/resolve"
	sent "github.com/revelaction/signpose/sentence"
	"github.com/revelaction/signpose/server"
	"github.com/revelaction/signpose/timeline"
)

func testDict() coord.Dictionary {
	hand := func(x float64) coord.Joints {
		return coord.Joints{{Name: "WRIST", Pos: coord.Vec3{x, 0, 0}}, {Name: "THUMB_CMC", Pos: coord.Vec3{x, 0.1, 0}}}
	}

	return coord.Dictionary{
		"I":    coord.Entries{{Kind: coord.WholeWord, Right: hand(1)}},
		"RAIN": coord.Entries{{Kind: coord.WholeWord, Left: hand(2), Right: hand(3)}},
		"LIKE": coord.Entries{{Kind: coord.WholeWord, Right: hand(4)}},
		"NOT":  coord.Entries{{Kind: coord.WholeWord, Left: hand(5)}},
		"A":    coord.Entries{{Kind: coord.Letter, Hand: hand(6)}},
	}
}

func rainTokens() []sent.Token {
	return []sent.Token{
		{Text: "I", Lemma: "I", Pos: "PRON", Dep: "nsubj"},
		{Text: "do", Lemma: "do", Pos: "AUX", Dep: "aux"},
		{Text: "n't", Lemma: "not", Pos: "PART", Dep: "neg"},
		{Text: "like", Lemma: "like", Pos: "VERB", Dep: "ROOT"},
		{Text: "rain", Lemma: "rain", Pos: "NOUN", Dep: "dobj"},
	}
}

func post(router *gin.Engine, path string, body any, accept string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type failingRunner struct {
	err error
}

func (f failingRunner) Run(ctx context.Context, text string) (pipeline.Result, error) {
	return pipeline.Result{}, f.err
}

func (f failingRunner) RunTokens(ctx context.Context, tokens []sent.Token) (pipeline.Result, error) {
	return pipeline.Result{}, f.err
}

func (f failingRunner) RunGloss(ctx context.Context, text string) (pipeline.Result, error) {
	panic("unexpected call")
}

var _ = Describe("Handler", func() {
	var (
		router *gin.Engine
		p      *pipeline.Pipeline
		memory *cache.Memory
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

		d := testDict()
		r := resolve.NewResolver(d)
		p = pipeline.New(r)
		memory = cache.NewMemory()
		p.Cache = memory
		p.Fingerprint = "test"

		corpus := annotate.NewCorpus()
		corpus.Add("I don't like rain", rainTokens())
		p.Annotator = corpus

		router = server.NewRouter(server.RouterConfig{}, server.NewHandler(p, d.Keys()))
	})

	It("reports health", func() {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(server.RequestIDHeader)).NotTo(BeEmpty())
	})

	It("keeps the client request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(server.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get(server.RequestIDHeader)).To(Equal("abc-123"))
	})

	It("orders tokens into gloss", func() {
		w := post(router, "/api/v1/gloss", map[string]any{"tokens": rainTokens()}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp server.GlossResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Gloss).To(Equal("I RAIN LIKE NOT"))
		Expect(resp.Tokens).To(Equal([]string{"I", "RAIN", "LIKE", "NOT"}))
		Expect(resp.Sequence.Others).To(Equal([]string{"DO"}))
		Expect(resp.Sequence.Negated).To(BeTrue())
	})

	It("rejects malformed tokens with 422", func() {
		tokens := []sent.Token{{Text: "like", Pos: "VERB", Dep: "ROOT"}}
		w := post(router, "/api/v1/gloss", map[string]any{"tokens": tokens}, "")

		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("returns 400 without tokens", func() {
		w := post(router, "/api/v1/gloss", map[string]any{}, "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("resolves gloss text with fingerspelling", func() {
		w := post(router, "/api/v1/resolve", map[string]string{"gloss": "I AQ"}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp server.ResolveResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Tokens).To(HaveLen(2))
		Expect(resp.Tokens[1].Spelled).To(BeTrue())
		Expect(resp.Tokens[1].Unknown).To(Equal([]string{"Q"}))
		Expect(resp.Stats.NumUnknown).To(Equal(1))
	})

	It("builds a timeline from tokens", func() {
		w := post(router, "/api/v1/timeline", map[string]any{"tokens": rainTokens()}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var res pipeline.Result
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Text).To(Equal("I RAIN LIKE NOT"))
		Expect(res.Timeline.Frames).To(HaveLen(4 * (timeline.WordPoseFrames + timeline.PauseFrames)))
		Expect(res.Timeline.FPS).To(Equal(timeline.FPS))
		Expect(res.Cached).To(BeFalse())
	})

	It("builds a timeline from text through the annotator and caches it", func() {
		w := post(router, "/api/v1/timeline", map[string]string{"text": "I don't like rain"}, "")
		Expect(w.Code).To(Equal(http.StatusOK))

		w = post(router, "/api/v1/timeline", map[string]string{"text": "I don't like rain"}, "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var res pipeline.Result
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Cached).To(BeTrue())
		Expect(memory.Len()).To(Equal(1))
	})

	It("returns the placeholder clip for an empty gloss", func() {
		w := post(router, "/api/v1/timeline", map[string]string{"gloss": ""}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var res pipeline.Result
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Timeline.Frames).To(HaveLen(timeline.PlaceholderFrames))
		Expect(res.Timeline.Frames[0].Caption).To(Equal(timeline.PlaceholderCaption))
	})

	It("returns the placeholder clip for an empty token list", func() {
		w := post(router, "/api/v1/timeline", map[string]any{"tokens": []sent.Token{}}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var res pipeline.Result
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Timeline.Frames).To(HaveLen(timeline.PlaceholderFrames))
		Expect(res.Timeline.Frames[0].Caption).To(Equal(timeline.PlaceholderCaption))
	})

	It("returns the placeholder clip for empty text without calling the annotator", func() {
		p.Annotator = nil
		w := post(router, "/api/v1/timeline", map[string]string{"text": ""}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var res pipeline.Result
		Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Timeline.Frames).To(HaveLen(timeline.PlaceholderFrames))
	})

	It("resolves lower case gloss against the dictionary", func() {
		w := post(router, "/api/v1/resolve", map[string]string{"gloss": "rain"}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp server.ResolveResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Gloss).To(Equal("RAIN"))
		Expect(resp.Tokens).To(HaveLen(1))
		Expect(resp.Tokens[0].Spelled).To(BeFalse())
		Expect(resp.Tokens[0].Unknown).To(BeEmpty())
	})

	It("encodes msgpack when asked to", func() {
		w := post(router, "/api/v1/timeline", map[string]string{"gloss": "LIKE"}, server.MIMEMsgpack)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal(server.MIMEMsgpack))
		Expect(w.Header().Get("X-Gloss")).To(Equal("LIKE"))

		tl, err := render.ReadMsgpack(w.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(tl.Frames).To(HaveLen(timeline.WordPoseFrames + timeline.PauseFrames))
		Expect(tl.Frames[0].Right).To(HaveLen(2))
	})

	It("requires exactly one input", func() {
		w := post(router, "/api/v1/timeline", map[string]string{}, "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = post(router, "/api/v1/timeline", map[string]any{"text": "hi", "gloss": "HI"}, "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 502 when the annotator fails", func() {
		w := post(router, "/api/v1/timeline", map[string]string{"text": "never annotated"}, "")

		Expect(w.Code).To(Equal(http.StatusBadGateway))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["error"]).To(ContainSubstring("annotator failed"))
	})

	It("returns 501 when no annotator is configured", func() {
		p.Annotator = nil
		w := post(router, "/api/v1/timeline", map[string]string{"text": "I don't like rain"}, "")

		Expect(w.Code).To(Equal(http.StatusNotImplemented))
	})

	It("returns 500 on unexpected errors", func() {
		h := server.NewHandler(failingRunner{err: errors.New("boom")}, nil)
		r := server.NewRouter(server.RouterConfig{}, h)

		w := post(r, "/api/v1/timeline", map[string]any{"tokens": rainTokens()}, "")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("recovers from panics", func() {
		h := server.NewHandler(failingRunner{}, nil)
		r := server.NewRouter(server.RouterConfig{}, h)

		w := post(r, "/api/v1/resolve", map[string]string{"gloss": "I"}, "")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("lists dictionary keys by prefix", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dictionary/keys?prefix=l", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp server.KeysResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Keys).To(Equal([]string{"LIKE"}))
	})
})

var _ = Describe("StatusFor", func() {
	DescribeTable("maps errors",
		func(err error, status int) {
			Expect(server.StatusFor(err)).To(Equal(status))
		},
		Entry("malformed token", sent.ErrMalformedToken, http.StatusUnprocessableEntity),
		Entry("annotator", annotate.ErrAnnotator, http.StatusBadGateway),
		Entry("no annotator", pipeline.ErrNoAnnotator, http.StatusNotImplemented),
		Entry("deadline", context.DeadlineExceeded, http.StatusGatewayTimeout),
		Entry("canceled", context.Canceled, http.StatusServiceUnavailable),
		Entry("other", errors.New("boom"), http.StatusInternalServerError),
	)
})
