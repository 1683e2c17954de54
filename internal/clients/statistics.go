package clients

import (
	"context"
	"net/http"
)

type StatisticsClient struct{ api *API }

func NewStatisticsClient(api *API) *StatisticsClient { return &StatisticsClient{api: api} }

func (sc *StatisticsClient) Overview(ctx context.Context) (Statistics, error) {
	return fetch[Statistics](ctx, sc.api, request{method: http.MethodGet, path: "/statistics", auth: true})
}
