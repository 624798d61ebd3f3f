package metrics

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "instachat_http_requests_total",
	Help: "HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

var storiesSwept = promauto.NewCounter(prometheus.CounterOpts{
	Name: "instachat_stories_swept_total",
	Help: "Stories deactivated by the expiry sweep.",
})

// Handler returns the scrape endpoint, served on the side listener.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestCounter counts every routed request.
func RequestCounter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(c.Response().StatusCode())).Inc()
		return err
	}
}

// AddSweptStories records the outcome of one expiry sweep.
func AddSweptStories(n int64) {
	storiesSwept.Add(float64(n))
}
