package kubernetes

// ToolDocs provides the native descriptions for the Kubernetes operations.
// Keys are the snake_case method names; the walker prefixes the root name.
func (c *Client) ToolDocs() map[string]string {
	return map[string]string{
		"list_resources":     "List any Kubernetes resources by type with optional filtering, sorted newest first. Returns only metadata, apiVersion, and kind for lightweight responses. Use get_resource for full resource details.",
		"get_resource":       "Get specific resource details.",
		"list_api_resources": "List available Kubernetes API resources with their details (similar to kubectl api-resources).",
		"list_contexts":      "List available Kubernetes contexts from the kubeconfig file.",
		"get_pod_logs":       "Get pod logs with advanced filtering options including grep patterns, time filtering, and previous logs.",
		"get_pod_containers": "List containers in a pod for log access.",
		"get_node_metrics":   "Get node metrics (CPU and memory usage).",
		"get_pod_metrics":    "Get pod metrics (CPU and memory usage).",
	}
}
