package pricing

import (
	"context"
	"time"
)

// MetalsLiveURL is the metals.live spot gold endpoint.
const MetalsLiveURL = "https://api.metals.live/v1/spot/gold"

// MetalsLive reads gold spot from a JSON list whose first entry carries a
// price field. The symbol argument is only used in errors.
type MetalsLive struct {
	client
}

// NewMetalsLive returns a spot gold client. An empty apiURL selects
// MetalsLiveURL.
func NewMetalsLive(apiURL string, timeout time.Duration) *MetalsLive {
	if apiURL == "" {
		apiURL = MetalsLiveURL
	}
	return &MetalsLive{client: newClient(apiURL, timeout)}
}

func (m *MetalsLive) Price(ctx context.Context, symbol string) (float64, error) {
	doc, err := m.getJSON(ctx, m.baseURL)
	if err != nil {
		return 0, unavailable(symbol, err)
	}
	p, err := lookupFloat(doc, "$[0].price")
	if err != nil {
		return 0, unavailable(symbol, err)
	}
	return checkPrice(symbol, p)
}
