package text

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Keyword is one scored term or phrase from ExtractKeywords.
type Keyword struct {
	Term  string
	Score float64
}

// Combination weights mirror original_source's get_best_keywords exactly:
// basic frequency counts once, TF-IDF scores are scaled by 100 before their
// own 2.0 weight (TF-IDF scores are tiny fractions; the original's *100
// rescales them into the same order of magnitude as frequency counts), RAKE
// phrase scores at 1.5, and bigram frequency at 1.2. Trigrams are
// deliberately not folded in here: original_source computes them in
// extract_all but never includes them in get_best_keywords' combination
//.
const (
	basicWeight  = 1.0
	tfidfWeight  = 2.0
	tfidfScale   = 100.0
	rakeWeight   = 1.5
	bigramWeight = 1.2
)

var wordRegex = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9]*`)

// ExtractKeywords ranks the topN best keywords/phrases in text by combining
// four independent signals — basic frequency, TF-IDF against corpus, RAKE
// phrase scoring, and bigram frequency — exactly as
// original_source's IntelligentKeywordExtractor.get_best_keywords does.
// corpus may be nil; TF-IDF then degrades to scoring text against itself as
// the only document, contributing no discriminating signal but never
// erroring (graceful degradation per spec §4.4).
func ExtractKeywords(text string, topN int, corpus []string) []Keyword {
	if strings.TrimSpace(text) == "" || topN <= 0 {
		return nil
	}

	tokens := tokenize(text)
	scores := make(map[string]float64)

	for term, freq := range basicFrequencies(tokens, 2) {
		scores[term] += float64(freq) * basicWeight
	}
	for _, kw := range tfidfScores(tokens, corpus, topN*2) {
		scores[kw.Term] += kw.Score * tfidfScale * tfidfWeight
	}
	for _, kw := range rakeScores(text, topN*2) {
		scores[kw.Term] += kw.Score * rakeWeight
	}
	for term, freq := range ngramFrequencies(tokens, 2, 2) {
		scores[term] += float64(freq) * bigramWeight
	}

	return topKeywords(scores, topN)
}

func topKeywords(scores map[string]float64, topN int) []Keyword {
	result := make([]Keyword, 0, len(scores))
	for term, score := range scores {
		result = append(result, Keyword{Term: term, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Term < result[j].Term
	})
	if len(result) > topN {
		result = result[:topN]
	}
	return result
}

// tokenize lowercases text and splits it into alphanumeric-starting words,
// the fallback tokenizer original_source falls back to when NLTK is
// unavailable — treated here as the only tokenizer, since no NLTK-equivalent
// exists in the pack).
func tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}

func isValidWord(word string) bool {
	if len(word) < 3 {
		return false
	}
	if stopwords[word] {
		return false
	}
	return true
}

func filteredTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if isValidWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// basicFrequencies counts filtered-token frequencies, dropping terms seen
// fewer than minFreq times (original_source's extract_keywords_basic).
func basicFrequencies(tokens []string, minFreq int) map[string]int {
	freq := make(map[string]int)
	for _, t := range filteredTokens(tokens) {
		freq[t]++
	}
	for term, count := range freq {
		if count < minFreq {
			delete(freq, term)
		}
	}
	return freq
}

// ngramFrequencies counts frequencies of n consecutive filtered tokens
// joined by spaces, dropping ones seen fewer than minFreq times
// (original_source's extract_ngrams).
func ngramFrequencies(tokens []string, n, minFreq int) map[string]int {
	filtered := filteredTokens(tokens)
	freq := make(map[string]int)
	if len(filtered) < n {
		return freq
	}
	for i := 0; i+n <= len(filtered); i++ {
		freq[strings.Join(filtered[i:i+n], " ")]++
	}
	for term, count := range freq {
		if count < minFreq {
			delete(freq, term)
		}
	}
	return freq
}

// tfidfScores computes a simple TF-IDF over text's tokens against corpus
// (each corpus entry treated as one document), returning the topN terms by
// score. This is a pure-Go stand-in for original_source's sklearn
// TfidfVectorizer: no ecosystem TF-IDF library exists in the pack, so the
// standard log-scaled formula is computed directly).
func tfidfScores(tokens []string, corpus []string, topN int) []Keyword {
	filtered := filteredTokens(tokens)
	if len(filtered) == 0 {
		return nil
	}

	tf := make(map[string]int)
	for _, t := range filtered {
		tf[t]++
	}

	docFreq := make(map[string]int)
	totalDocs := 1 // text itself counts as a document
	for term := range tf {
		docFreq[term]++
	}
	for _, doc := range corpus {
		totalDocs++
		seen := make(map[string]bool)
		for _, t := range filteredTokens(tokenize(doc)) {
			if !seen[t] {
				docFreq[t]++
				seen[t] = true
			}
		}
	}

	scores := make([]Keyword, 0, len(tf))
	for term, count := range tf {
		idf := math.Log(float64(totalDocs+1) / float64(docFreq[term]+1))
		scores = append(scores, Keyword{Term: term, Score: float64(count) * idf})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > topN {
		scores = scores[:topN]
	}
	return scores
}

// rakeScores implements RAKE (Rapid Automatic Keyword Extraction): text is
// split into candidate phrases at stopword/punctuation boundaries, each
// word's score is its co-occurrence degree (within a phrase) divided by its
// frequency, and a phrase's score is the sum of its words' scores
// (original_source's rake_nltk-backed extract_keywords_rake, reimplemented
// in pure Go since no RAKE library exists in the pack — SPEC_FULL.md §9
// decision (d)).
func rakeScores(text string, topN int) []Keyword {
	phrases := rakeCandidatePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, phrase := range phrases {
		words := strings.Fields(phrase)
		wordDegree := len(words) - 1
		for _, w := range words {
			freq[w]++
			degree[w] += wordDegree
		}
	}

	wordScore := make(map[string]float64, len(freq))
	for w, f := range freq {
		wordScore[w] = float64(degree[w]+f) / float64(f)
	}

	phraseScore := make(map[string]float64)
	for _, phrase := range phrases {
		var total float64
		for _, w := range strings.Fields(phrase) {
			total += wordScore[w]
		}
		if total > phraseScore[phrase] {
			phraseScore[phrase] = total
		}
	}

	result := make([]Keyword, 0, len(phraseScore))
	for phrase, score := range phraseScore {
		result = append(result, Keyword{Term: phrase, Score: score})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	if len(result) > topN {
		result = result[:topN]
	}
	return result
}

var rakeSplitRegex = regexp.MustCompile(`[.,!?;:()\[\]{}"']+`)

// rakeCandidatePhrases splits text on punctuation, then further splits each
// chunk on stopwords, discarding resulting phrases with fewer than 1 or more
// than 3 words (RAKE's standard max_length bound).
func rakeCandidatePhrases(text string) []string {
	var phrases []string
	for _, chunk := range rakeSplitRegex.Split(strings.ToLower(text), -1) {
		words := strings.Fields(chunk)
		var current []string
		flush := func() {
			if len(current) > 0 && len(current) <= 3 {
				phrases = append(phrases, strings.Join(current, " "))
			}
			current = nil
		}
		for _, w := range words {
			if stopwords[w] || len(w) < 2 {
				flush()
				continue
			}
			current = append(current, w)
		}
		flush()
	}
	return phrases
}
