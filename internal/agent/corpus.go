package agent

import (
	"sync"
	"time"

	"github.com/blevesearch/bleve"
)

// Doc is one fetched page kept for the rest of a session.
type Doc struct {
	URL       string
	Title     string
	Text      string
	FetchedAt time.Time
}

// Corpus keeps, per session, the pages fetched in earlier turns: a URL cache
// so a page is never fetched twice within one session, and a mem-only BM25
// index so follow-up turns can pull previously fetched pages relevant to the
// new query back into context.
type Corpus struct {
	sessions map[string]*sessionCorpus
	mu       sync.RWMutex
}

type sessionCorpus struct {
	index     bleve.Index
	docs      map[string]Doc // keyed by URL
	lastTouch time.Time
	mu        sync.RWMutex
}

func NewCorpus() *Corpus {
	return &Corpus{sessions: make(map[string]*sessionCorpus)}
}

func (c *Corpus) forSession(sessionID string, create bool) (*sessionCorpus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc, ok := c.sessions[sessionID]
	if !ok {
		if !create {
			return nil, nil
		}
		index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
		sc = &sessionCorpus{index: index, docs: make(map[string]Doc)}
		c.sessions[sessionID] = sc
	}
	sc.lastTouch = time.Now()
	return sc, nil
}

// Add indexes one fetched page under the session.
func (c *Corpus) Add(sessionID string, doc Doc) error {
	sc, err := c.forSession(sessionID, true)
	if err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.docs[doc.URL] = doc
	return sc.index.Index(doc.URL, map[string]string{
		"title": doc.Title,
		"text":  doc.Text,
	})
}

// Get returns the cached page for a URL fetched earlier in the session.
func (c *Corpus) Get(sessionID, url string) (Doc, bool) {
	sc, err := c.forSession(sessionID, false)
	if err != nil || sc == nil {
		return Doc{}, false
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	doc, ok := sc.docs[url]
	return doc, ok
}

// TopK returns up to k previously fetched pages matching the query, best
// first. An empty slice means nothing relevant was fetched before.
func (c *Corpus) TopK(sessionID, query string, k int) []Doc {
	sc, err := c.forSession(sessionID, false)
	if err != nil || sc == nil {
		return nil
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	search := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), k, 0, false)
	res, err := sc.index.Search(search)
	if err != nil {
		return nil
	}
	var out []Doc
	for _, hit := range res.Hits {
		if doc, ok := sc.docs[hit.ID]; ok {
			out = append(out, doc)
		}
		if len(out) >= k {
			break
		}
	}
	return out
}

// Sweep drops corpora idle longer than maxAge, matching session eviction.
func (c *Corpus) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for id, sc := range c.sessions {
		if sc.lastTouch.Before(cutoff) {
			_ = sc.index.Close()
			delete(c.sessions, id)
			evicted++
		}
	}
	return evicted
}
