package text

// stopwords is the combined English/French stopword set
// original_source's IntelligentKeywordExtractor loads from NLTK plus its own
// custom additions; reproduced here as a plain set since no NLTK-equivalent
// corpus exists in the pack).
var stopwords = buildStopwordSet(
	// English
	"the", "is", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "up", "down", "about", "over", "under",
	"which", "that", "this", "these", "those", "them", "they", "their",
	"there", "where", "when", "why", "how", "what", "who", "whom",
	"it", "its", "be", "been", "being", "am", "are", "was", "were",
	"will", "would", "should", "could", "can", "may", "might", "must",
	"have", "has", "had", "do", "does", "did", "done", "doing",
	"a", "an", "as", "if", "than", "then", "so", "such", "out", "into",
	"not", "only", "own", "same", "just", "also", "more", "most", "other",
	// French
	"le", "la", "les", "un", "une", "des", "de", "du", "au", "aux",
	"ce", "se", "ces", "ses", "son", "sa", "leur", "leurs", "mon", "ma",
	"ton", "ta", "mes", "tes", "notre", "votre", "nos", "vos",
	"il", "elle", "ils", "elles", "on", "nous", "vous", "je", "tu",
	"et", "ou", "mais", "donc", "car", "ni", "que", "qui", "quoi",
	"dont", "comment", "pourquoi", "quand", "combien",
	"dans", "sur", "sous", "avec", "sans", "pour", "par", "en",
	"etre", "avoir", "faire", "dire", "aller", "voir", "savoir",
	"pouvoir", "vouloir", "devoir", "falloir", "mettre", "prendre",
	// Noise
	"wa", "http", "https", "www", "com", "org", "net", "html",
)

func buildStopwordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
