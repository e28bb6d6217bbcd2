// Package metrics exposes the Prometheus collectors of the service.
package metrics

const namespace = "bithook"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
