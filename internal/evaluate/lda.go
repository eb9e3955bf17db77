package evaluate

import (
	"math/rand"
	"sort"
)

// ldaModel is a latent Dirichlet allocation topic model fitted by
// collapsed Gibbs sampling. The sampler is seeded so that repeated
// runs over the same corpus produce identical assignments.
type ldaModel struct {
	topics    int
	vocabSize int
	alpha     float64
	eta       float64

	topicWordCounts [][]int
	topicCounts     []int
	docTopicCounts  [][]int
	docLens         []int
}

// sweepsPerPass converts configured corpus passes into Gibbs sweeps.
const sweepsPerPass = 25

// fitLDA fits a topic model over the corpus. Each document is a
// sequence of dictionary token ids, one entry per token occurrence.
func fitLDA(corpus [][]int, vocabSize, topics, passes int, seed int64) *ldaModel {
	m := &ldaModel{
		topics:          topics,
		vocabSize:       vocabSize,
		alpha:           1.0 / float64(topics),
		eta:             1.0 / float64(topics),
		topicWordCounts: make([][]int, topics),
		topicCounts:     make([]int, topics),
		docTopicCounts:  make([][]int, len(corpus)),
		docLens:         make([]int, len(corpus)),
	}
	for t := 0; t < topics; t++ {
		m.topicWordCounts[t] = make([]int, vocabSize)
	}

	rng := rand.New(rand.NewSource(seed))

	// Random topic assignment per token occurrence.
	assignments := make([][]int, len(corpus))
	for d, doc := range corpus {
		assignments[d] = make([]int, len(doc))
		m.docTopicCounts[d] = make([]int, topics)
		m.docLens[d] = len(doc)
		for n, w := range doc {
			t := rng.Intn(topics)
			assignments[d][n] = t
			m.docTopicCounts[d][t]++
			m.topicWordCounts[t][w]++
			m.topicCounts[t]++
		}
	}

	weights := make([]float64, topics)
	etaSum := m.eta * float64(vocabSize)

	for sweep := 0; sweep < passes*sweepsPerPass; sweep++ {
		for d, doc := range corpus {
			for n, w := range doc {
				old := assignments[d][n]
				m.docTopicCounts[d][old]--
				m.topicWordCounts[old][w]--
				m.topicCounts[old]--

				total := 0.0
				for t := 0; t < topics; t++ {
					weights[t] = (float64(m.docTopicCounts[d][t]) + m.alpha) *
						(float64(m.topicWordCounts[t][w]) + m.eta) /
						(float64(m.topicCounts[t]) + etaSum)
					total += weights[t]
				}

				target := rng.Float64() * total
				next := topics - 1
				for t := 0; t < topics; t++ {
					target -= weights[t]
					if target < 0 {
						next = t
						break
					}
				}

				assignments[d][n] = next
				m.docTopicCounts[d][next]++
				m.topicWordCounts[next][w]++
				m.topicCounts[next]++
			}
		}
	}

	return m
}

// maxAssignment returns the highest probability any document assigns
// to the topic.
func (m *ldaModel) maxAssignment(topic int) float64 {
	best := 0.0
	for d, counts := range m.docTopicCounts {
		if m.docLens[d] == 0 {
			continue
		}
		theta := (float64(counts[topic]) + m.alpha) /
			(float64(m.docLens[d]) + m.alpha*float64(m.topics))
		if theta > best {
			best = theta
		}
	}
	return best
}

// topWords returns up to n dictionary ids for the topic's most
// probable words, most probable first. Ties break on id so output is
// stable. Words the topic was never assigned are omitted.
func (m *ldaModel) topWords(topic, n int) []int {
	counts := m.topicWordCounts[topic]

	ids := make([]int, 0, len(counts))
	for id, count := range counts {
		if count > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
