package kubernetes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
)

// NodeMetricsRequest selects which node metrics to return.
type NodeMetricsRequest struct {
	NodeName string `json:"node_name,omitempty" desc:"Specific node name to get metrics for (all nodes when empty)"`
	Limit    int    `json:"limit,omitempty" desc:"Maximum number of node metrics to return (defaults to all)"`
	Continue string `json:"continue,omitempty" desc:"Continue token for pagination (from previous response)"`
}

// MetricsList is a paginated metrics result.
type MetricsList struct {
	Kind       string `json:"kind"`
	APIVersion string `json:"apiVersion"`
	Namespace  string `json:"namespace,omitempty"`
	Count      int    `json:"count"`
	Items      []any  `json:"items"`
	Continue   string `json:"continue,omitempty"`
}

// GetNodeMetrics returns node CPU and memory usage from the metrics server,
// newest first, with client-side pagination since the metrics API does not
// paginate.
func (c *Client) GetNodeMetrics(ctx context.Context, req *NodeMetricsRequest) (*MetricsList, error) {
	if req.NodeName != "" {
		metrics, err := c.metricsClient.MetricsV1beta1().NodeMetricses().Get(ctx, req.NodeName, metav1.GetOptions{})
		if err != nil {
			return nil, wrapMetricsError(fmt.Errorf("failed to get node metrics for %s: %w", req.NodeName, err))
		}
		return &MetricsList{
			Kind:       "NodeMetricsList",
			APIVersion: "metrics.k8s.io/v1beta1",
			Count:      1,
			Items:      []any{metrics},
		}, nil
	}

	list, err := c.metricsClient.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapMetricsError(fmt.Errorf("failed to list node metrics: %w", err))
	}

	items := make([]any, len(list.Items))
	for i := range list.Items {
		items[i] = list.Items[i]
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].(metricsv1beta1.NodeMetrics).Timestamp.After(items[j].(metricsv1beta1.NodeMetrics).Timestamp.Time)
	})

	page, next, err := paginate(items, req.Limit, req.Continue, "node", "")
	if err != nil {
		return nil, err
	}

	return &MetricsList{
		Kind:       "NodeMetricsList",
		APIVersion: "metrics.k8s.io/v1beta1",
		Count:      len(page),
		Items:      page,
		Continue:   next,
	}, nil
}

// PodMetricsRequest selects which pod metrics to return.
type PodMetricsRequest struct {
	Namespace string `json:"namespace,omitempty" desc:"Namespace to get pod metrics from (all namespaces when empty)"`
	PodName   string `json:"pod_name,omitempty" desc:"Specific pod name to get metrics for (requires namespace)"`
	Limit     int    `json:"limit,omitempty" desc:"Maximum number of pod metrics to return (defaults to all)"`
	Continue  string `json:"continue,omitempty" desc:"Continue token for pagination (from previous response)"`
}

// GetPodMetrics returns pod CPU and memory usage from the metrics server.
func (c *Client) GetPodMetrics(ctx context.Context, req *PodMetricsRequest) (*MetricsList, error) {
	if req.PodName != "" {
		if req.Namespace == "" {
			return nil, fmt.Errorf("namespace is required when specifying pod_name")
		}
		metrics, err := c.metricsClient.MetricsV1beta1().PodMetricses(req.Namespace).Get(ctx, req.PodName, metav1.GetOptions{})
		if err != nil {
			return nil, wrapMetricsError(fmt.Errorf("failed to get pod metrics for %s/%s: %w", req.Namespace, req.PodName, err))
		}
		return &MetricsList{
			Kind:       "PodMetricsList",
			APIVersion: "metrics.k8s.io/v1beta1",
			Namespace:  req.Namespace,
			Count:      1,
			Items:      []any{metrics},
		}, nil
	}

	list, err := c.metricsClient.MetricsV1beta1().PodMetricses(req.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapMetricsError(fmt.Errorf("failed to list pod metrics: %w", err))
	}

	items := make([]any, len(list.Items))
	for i := range list.Items {
		items[i] = list.Items[i]
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].(metricsv1beta1.PodMetrics).Timestamp.After(items[j].(metricsv1beta1.PodMetrics).Timestamp.Time)
	})

	page, next, err := paginate(items, req.Limit, req.Continue, "pod", req.Namespace)
	if err != nil {
		return nil, err
	}

	return &MetricsList{
		Kind:       "PodMetricsList",
		APIVersion: "metrics.k8s.io/v1beta1",
		Namespace:  req.Namespace,
		Count:      len(page),
		Items:      page,
		Continue:   next,
	}, nil
}

// paginationState is the decoded continue token for metrics pagination.
type paginationState struct {
	Offset    int    `json:"offset"`
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
}

// paginate slices items per limit and continue token and returns the next
// token when more items remain. A zero limit returns everything.
func paginate(items []any, limit int, token, itemType, namespace string) ([]any, string, error) {
	if limit <= 0 {
		return items, "", nil
	}

	state := paginationState{}
	if token != "" {
		data, err := base64.URLEncoding.DecodeString(token)
		if err != nil {
			return nil, "", fmt.Errorf("invalid continue token: %w", err)
		}
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, "", fmt.Errorf("invalid continue token format: %w", err)
		}
		if state.Offset < 0 {
			return nil, "", fmt.Errorf("invalid continue token: negative offset")
		}
		if state.Type != "" && state.Type != itemType {
			return nil, "", fmt.Errorf("continue token is not valid for %s metrics", itemType)
		}
		if state.Namespace != namespace {
			state.Offset = 0
		}
	}

	if state.Offset >= len(items) {
		return []any{}, "", nil
	}

	end := state.Offset + limit
	if end >= len(items) {
		return items[state.Offset:], "", nil
	}

	next, _ := json.Marshal(paginationState{Offset: end, Type: itemType, Namespace: namespace})
	return items[state.Offset:end], base64.URLEncoding.EncodeToString(next), nil
}

// wrapMetricsError makes missing metrics-server failures actionable.
func wrapMetricsError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "metrics-server") ||
		strings.Contains(msg, "metrics.k8s.io") ||
		strings.Contains(msg, "the server could not find the requested resource") ||
		strings.Contains(msg, "no metrics available") {
		return fmt.Errorf("metrics server appears to be unavailable, you might need to install metrics-server in the cluster: %w", err)
	}
	return err
}
