package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the application is running inside a Docker container.
// Detection is based on the presence of /.dockerenv. The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveEndpointForDocker rewrites a model endpoint that points at the host
// machine (localhost, 127.0.0.1) to host.docker.internal when running inside
// Docker, so self-hosted model servers on the host stay reachable.
// Unparseable endpoints are returned unchanged.
func ResolveEndpointForDocker(endpoint string) string {
	if !IsRunningInDocker() {
		return endpoint
	}
	return rewriteLocalhost(endpoint)
}

func rewriteLocalhost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}

	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		host, port = u.Host, ""
	}
	if host != "localhost" && host != "127.0.0.1" {
		return endpoint
	}

	if port != "" {
		u.Host = net.JoinHostPort("host.docker.internal", port)
	} else {
		u.Host = "host.docker.internal"
	}
	return u.String()
}
