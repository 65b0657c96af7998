package analytics

import (
	"sort"

	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

type emotionBucket struct {
	pnl    float64
	stress float64
	count  int
}

// CorrelateJournal groups journal entries that link to a trade by emotion.
// Entries without a populated trade are left out of the rows but still count
// toward the dominant mood and mindset score.
func CorrelateJournal(entries []models.JournalEntry) models.PsychologyInsights {
	buckets := make(map[models.Emotion]*emotionBucket)
	moods := make(map[models.Emotion]int)

	for _, e := range entries {
		moods[e.Emotion]++
		if e.Trade == nil {
			continue
		}
		b := buckets[e.Emotion]
		if b == nil {
			b = &emotionBucket{}
			buckets[e.Emotion] = b
		}
		b.pnl += e.Trade.PnL
		b.stress += float64(e.StressLevel)
		b.count++
	}

	return models.PsychologyInsights{
		Source:       models.SourceJournal,
		Rows:         emotionRows(buckets),
		DominantMood: DominantMood(moods),
		MindsetScore: MindsetScore(moods, len(entries)),
		TotalEntries: len(entries),
	}
}

// CorrelateTradeMoods derives the same view from the mood tag on trades,
// using P/L as the profitability proxy. Stress is not recorded on trades
// and reports 0. Untagged trades are ignored.
func CorrelateTradeMoods(trades []models.Trade) models.PsychologyInsights {
	buckets := make(map[models.Emotion]*emotionBucket)
	moods := make(map[models.Emotion]int)
	tagged := 0

	for _, t := range trades {
		if t.Emotion == "" {
			continue
		}
		tagged++
		moods[t.Emotion]++
		b := buckets[t.Emotion]
		if b == nil {
			b = &emotionBucket{}
			buckets[t.Emotion] = b
		}
		b.pnl += t.PnL
		b.count++
	}

	return models.PsychologyInsights{
		Source:       models.SourceTradeTags,
		Rows:         emotionRows(buckets),
		DominantMood: DominantMood(moods),
		MindsetScore: MindsetScore(moods, tagged),
		TotalEntries: tagged,
	}
}

// emotionRows orders rows by count descending, then emotion name.
func emotionRows(buckets map[models.Emotion]*emotionBucket) []models.EmotionPnLRow {
	rows := make([]models.EmotionPnLRow, 0, len(buckets))
	for emotion, b := range buckets {
		rows = append(rows, models.EmotionPnLRow{
			Emotion:        emotion,
			AvgPnL:         stats.Average(b.pnl, b.count),
			AvgStressLevel: stats.Average(b.stress, b.count),
			Count:          b.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Emotion < rows[j].Emotion
	})
	return rows
}

// DominantMood returns the most frequent emotion. Ties go to the
// alphabetically first emotion. No moods yields "".
func DominantMood(counts map[models.Emotion]int) models.Emotion {
	var best models.Emotion
	bestCount := 0
	for emotion, n := range counts {
		if n > bestCount || (n == bestCount && emotion < best) {
			best, bestCount = emotion, n
		}
	}
	return best
}

// MindsetScore is the percentage of entries marked disciplined.
func MindsetScore(counts map[models.Emotion]int, total int) float64 {
	return stats.WinRate(counts[models.EmotionDisciplined], total)
}
