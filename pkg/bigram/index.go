package bigram

import (
	"math"
	"sort"
)

// bm25K1 and bm25B are the Okapi BM25 constants spec.md pins explicitly
// (k1≈1.5, b≈0.75). This is a deliberate deviation from the teacher's own
// resorank default of k1=1.2: the retriever built here never inherits that
// default.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// posting records a token's term frequency within one document.
type posting struct {
	termFreq int
}

// Index is a BM25 index over bigram-tokenised document bodies. Document
// frequency, IDF, and average document length are all computed over the
// indexed bodies only.
type Index struct {
	postings  map[string]map[string]*posting // token -> docName -> posting
	docLens   map[string]int                 // docName -> token count
	totalLen  int
	totalDocs int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]map[string]*posting),
		docLens:  make(map[string]int),
	}
}

// IndexDocument tokenises body and adds it to the index under docName. Each
// docName should be indexed at most once per Index; building a fresh Index
// per retrieval call is the supported usage (spec.md's Non-goals exclude
// incremental updates).
func (idx *Index) IndexDocument(docName, body string) {
	tokens := Tokenize(body)

	if _, exists := idx.docLens[docName]; !exists {
		idx.totalDocs++
	}
	idx.totalLen += len(tokens)
	idx.docLens[docName] = len(tokens)

	for _, tok := range tokens {
		byDoc, ok := idx.postings[tok]
		if !ok {
			byDoc = make(map[string]*posting)
			idx.postings[tok] = byDoc
		}
		p, ok := byDoc[docName]
		if !ok {
			p = &posting{}
			byDoc[docName] = p
		}
		p.termFreq++
	}
}

// averageDocLen returns the corpus mean token count, or 0 for an empty
// index.
func (idx *Index) averageDocLen() float64 {
	if idx.totalDocs == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(idx.totalDocs)
}

// idf returns the Okapi BM25 inverse document frequency for a token that
// appears in docFreq documents out of the corpus total, clamped at zero.
// Grounded on the teacher's CalculateIDF: ln(1 + (N-df+0.5)/(df+0.5)).
func (idx *Index) idf(docFreq int) float64 {
	if docFreq == 0 {
		return 0
	}
	n := float64(idx.totalDocs)
	df := float64(docFreq)
	ratio := (n - df + 0.5) / (df + 0.5)
	if ratio < 0 {
		ratio = 0
	}
	return math.Log(1.0 + ratio)
}

// saturate applies BM25 term-frequency saturation, grounded on the
// teacher's Saturate: ((k1+1)*tf)/(k1+tf).
func saturate(tf float64) float64 {
	if tf <= 0 {
		return 0
	}
	return ((bm25K1 + 1.0) * tf) / (bm25K1 + tf)
}

// normalizedTermFrequency applies BM25 length normalization before
// saturation, grounded on the teacher's NormalizedTermFrequency.
func normalizedTermFrequency(tf, docLen int, avgDocLen float64) float64 {
	if avgDocLen <= 0 || tf == 0 {
		return 0
	}
	denom := 1.0 - bm25B + bm25B*(float64(docLen)/avgDocLen)
	if denom <= 0 {
		return 0
	}
	return float64(tf) / denom
}

// Score computes score(query, docName) per spec.md §4.D:
// Σ idf(t) * tf_norm(t, d) over the query's bigram tokens.
func (idx *Index) Score(query, docName string) float64 {
	docLen, known := idx.docLens[docName]
	if !known {
		return 0
	}

	avgLen := idx.averageDocLen()
	total := 0.0
	for _, tok := range Tokenize(query) {
		byDoc, ok := idx.postings[tok]
		if !ok {
			continue
		}
		p, ok := byDoc[docName]
		if !ok {
			continue
		}
		df := len(byDoc)
		ntf := normalizedTermFrequency(p.termFreq, docLen, avgLen)
		total += idx.idf(df) * saturate(ntf)
	}
	return total
}

// ScoreAll computes Score(query, d) for every indexed document, omitting
// documents that score zero.
func (idx *Index) ScoreAll(query string) map[string]float64 {
	out := make(map[string]float64)
	for docName := range idx.docLens {
		if s := idx.Score(query, docName); s > 0 {
			out[docName] = s
		}
	}
	return out
}

// DocNames returns every indexed document name, sorted for determinism.
func (idx *Index) DocNames() []string {
	names := make([]string, 0, len(idx.docLens))
	for name := range idx.docLens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
