package utility

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

// GenerateBatchNumber ... Builds a human readable, time-derived batch number
func GenerateBatchNumber() string {
	timestamp := time.Now().Format("20060102150405")
	suffix := strings.Split(uuid.NewV4().String(), "-")[0]
	return fmt.Sprintf("%s%s%s", BATCH_NUMBER_PREFIX, timestamp, strings.ToUpper(suffix))
}

// NormalizePagination ... Clamps page and pageSize to supported bounds
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DEFAULT_PAGE_SIZE
	}
	if pageSize > MAX_PAGE_SIZE {
		pageSize = MAX_PAGE_SIZE
	}
	return page, pageSize
}

// GetIPAdress ... Returns the originating IP of an http request
func GetIPAdress(r *http.Request) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addresses := strings.Split(r.Header.Get(h), ",")
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(addresses[i])
			realIP := net.ParseIP(ip)
			if !realIP.IsGlobalUnicast() {
				continue
			}
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
