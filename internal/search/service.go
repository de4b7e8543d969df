package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/fittrack/internal/model"
)

// Searcher は検索クライアントのインターフェース。Clientの部分集合として定義する。
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.ExerciseResult, error)
}

// MetricsRecorder は検索サービスが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordSearchSuccess()
	RecordSearchFailure()
	RecordSearchLatency(duration time.Duration)
}

// Service は検索APIの障害をUIへ波及させない縮退レイヤー。
// 上流のエラー（接続失敗・非200・不正ペイロード）は警告ログとメトリクスに
// 記録した上で空の結果に変換し、リクエスト自体は成功として扱う。
type Service struct {
	client  Searcher
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（テスト用）。
func NewService(client Searcher, logger *slog.Logger, metrics MetricsRecorder) *Service {
	return &Service{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Search は検索語に一致するエクササイズの一覧を返す。
// 上流の失敗時は空スライスを返し、エラーは返さない。
// 読み取り専用のため、キャンセル・タイムアウトで状態が壊れることはない。
func (s *Service) Search(ctx context.Context, query string) []model.ExerciseResult {
	start := time.Now()

	results, err := s.client.Search(ctx, query)

	if s.metrics != nil {
		s.metrics.RecordSearchLatency(time.Since(start))
	}

	if err != nil {
		s.logger.Warn("exercise search degraded to empty results",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordSearchFailure()
		}
		return []model.ExerciseResult{}
	}

	if s.metrics != nil {
		s.metrics.RecordSearchSuccess()
	}

	if results == nil {
		results = []model.ExerciseResult{}
	}
	return results
}
