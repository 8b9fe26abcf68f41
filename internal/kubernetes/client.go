// Package kubernetes is the bundled Kubernetes SDK family: a read-only client
// whose exported methods are shaped for the surface walker. Every operation
// takes a request struct with tagged fields, so the reflection engine can
// derive tool schemas without any Kubernetes-specific code.
package kubernetes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsClient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/bridgetools/mcp-sdk-bridge/internal/logfilter"
)

// Config holds the parameters for creating a client. An empty Kubeconfig
// falls back to the KUBECONFIG environment variable, then ~/.kube/config,
// then in-cluster configuration.
type Config struct {
	Kubeconfig string
	Namespace  string
}

// Client is a read-only Kubernetes client wrapping the clientset, dynamic,
// discovery and metrics interfaces behind tool-shaped operations.
type Client struct {
	clientset       kubernetes.Interface
	dynamicClient   dynamic.Interface
	discoveryClient discovery.DiscoveryInterface
	metricsClient   metricsClient.Interface
	config          *rest.Config
	kubeconfig      string
	namespace       string
}

// NewClient creates a client from the provided configuration.
func NewClient(cfg *Config) (*Client, error) {
	restConfig, err := buildConfig(cfg.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	metrics, err := metricsClient.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return &Client{
		clientset:       clientset,
		dynamicClient:   dynamicClient,
		discoveryClient: discoveryClient,
		metricsClient:   metrics,
		config:          restConfig,
		kubeconfig:      cfg.Kubeconfig,
		namespace:       cfg.Namespace,
	}, nil
}

func kubeconfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envKubeconfig := os.Getenv("KUBECONFIG"); envKubeconfig != "" {
		return envKubeconfig
	}
	if home := homedir.HomeDir(); home != "" {
		return filepath.Join(home, ".kube", "config")
	}
	return ""
}

func buildConfig(kubeconfig string) (*rest.Config, error) {
	kubeconfig = kubeconfigPath(kubeconfig)

	if _, err := os.Stat(kubeconfig); os.IsNotExist(err) {
		return rest.InClusterConfig()
	}

	configLoadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		configLoadingRules,
		&clientcmd.ConfigOverrides{},
	)

	return clientConfig.ClientConfig()
}

// ListResourcesRequest selects which resources to enumerate.
type ListResourcesRequest struct {
	ResourceType  string `json:"resource_type" desc:"The type of resource to list - use plural form (e.g., \"pods\", \"deployments\", \"services\")"`
	APIVersion    string `json:"api_version,omitempty" desc:"API version for the resource (e.g., \"v1\", \"apps/v1\")"`
	Namespace     string `json:"namespace,omitempty" desc:"Target namespace (leave empty for cluster-scoped resources)"`
	LabelSelector string `json:"label_selector,omitempty" desc:"Label selector to filter resources (e.g., \"app=nginx,version=1.0\")"`
	FieldSelector string `json:"field_selector,omitempty" desc:"Field selector to filter resources (e.g., \"status.phase=Running\")"`
	Limit         int    `json:"limit,omitempty" desc:"Maximum number of resources to return (defaults to all)"`
	Continue      string `json:"continue,omitempty" desc:"Continue token for pagination (from previous response)"`
}

// ResourceList is a metadata-only listing, sorted newest first when not
// paginating.
type ResourceList struct {
	ResourceType string           `json:"resource_type"`
	Namespace    string           `json:"namespace,omitempty"`
	Count        int              `json:"count"`
	Items        []map[string]any `json:"items"`
	Continue     string           `json:"continue,omitempty"`
}

// ListResources lists resources of the requested type, returning only
// metadata, apiVersion and kind for lightweight responses.
func (c *Client) ListResources(ctx context.Context, req *ListResourcesRequest) (*ResourceList, error) {
	if req.ResourceType == "" {
		return nil, errors.New("resource_type is required")
	}

	gvr, err := c.resolveResourceType(req.ResourceType, req.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource type: %w", err)
	}

	opts := metav1.ListOptions{
		LabelSelector: req.LabelSelector,
		FieldSelector: req.FieldSelector,
		Continue:      req.Continue,
	}
	if req.Limit > 0 {
		opts.Limit = int64(req.Limit)
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = c.namespace
	}

	var ri dynamic.ResourceInterface = c.dynamicClient.Resource(gvr)
	if namespace != "" {
		ri = c.dynamicClient.Resource(gvr).Namespace(namespace)
	}

	resources, err := ri.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	items := make([]map[string]any, len(resources.Items))
	for i := range resources.Items {
		items[i] = resourceSummary(&resources.Items[i])
	}

	// Pagination relies on server-side ordering; only sort standalone lists.
	if req.Continue == "" && req.Limit == 0 {
		sort.SliceStable(items, func(i, j int) bool {
			ti, oki := creationTime(items[i])
			tj, okj := creationTime(items[j])
			if !oki || !okj {
				return oki
			}
			return ti.After(tj)
		})
	}

	return &ResourceList{
		ResourceType: req.ResourceType,
		Namespace:    namespace,
		Count:        len(items),
		Items:        items,
		Continue:     resources.GetContinue(),
	}, nil
}

// GetResourceRequest identifies one resource.
type GetResourceRequest struct {
	ResourceType string `json:"resource_type" desc:"The type of resource to get"`
	Name         string `json:"name" desc:"Resource name"`
	APIVersion   string `json:"api_version,omitempty" desc:"API version for the resource (e.g., \"v1\", \"apps/v1\")"`
	Namespace    string `json:"namespace,omitempty" desc:"Target namespace (required for namespaced resources)"`
}

// GetResource retrieves the full object for one resource.
func (c *Client) GetResource(ctx context.Context, req *GetResourceRequest) (map[string]any, error) {
	if req.ResourceType == "" {
		return nil, errors.New("resource_type is required")
	}
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	gvr, err := c.resolveResourceType(req.ResourceType, req.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource type: %w", err)
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = c.namespace
	}

	var ri dynamic.ResourceInterface = c.dynamicClient.Resource(gvr)
	if namespace != "" {
		ri = c.dynamicClient.Resource(gvr).Namespace(namespace)
	}

	resource, err := ri.Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return resource.Object, nil
}

// APIResource describes one discovered API resource, kubectl api-resources
// style.
type APIResource struct {
	Name         string   `json:"name"`
	SingularName string   `json:"singularName"`
	Namespaced   bool     `json:"namespaced"`
	Kind         string   `json:"kind"`
	Verbs        []string `json:"verbs"`
	ShortNames   []string `json:"shortNames,omitempty"`
	APIVersion   string   `json:"apiVersion"`
	Categories   []string `json:"categories,omitempty"`
}

// APIResourceList is the discovery result.
type APIResourceList struct {
	Resources []APIResource `json:"resources"`
	Count     int           `json:"count"`
}

// ListAPIResources lists the API resources the cluster serves.
func (c *Client) ListAPIResources(ctx context.Context) (*APIResourceList, error) {
	lists, err := c.discoveryClient.ServerPreferredResources()
	if err != nil && len(lists) == 0 {
		return nil, fmt.Errorf("failed to discover API resources: %w", err)
	}

	var resources []APIResource
	for _, list := range lists {
		if _, err := schema.ParseGroupVersion(list.GroupVersion); err != nil {
			continue
		}

		for _, resource := range list.APIResources {
			// Subresources carry a slash and are not directly listable.
			if strings.Contains(resource.Name, "/") {
				continue
			}

			resources = append(resources, APIResource{
				Name:         resource.Name,
				SingularName: resource.SingularName,
				Namespaced:   resource.Namespaced,
				Kind:         resource.Kind,
				Verbs:        resource.Verbs,
				ShortNames:   resource.ShortNames,
				APIVersion:   list.GroupVersion,
				Categories:   resource.Categories,
			})
		}
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Name < resources[j].Name
	})

	return &APIResourceList{Resources: resources, Count: len(resources)}, nil
}

// KubeContext describes one kubeconfig context.
type KubeContext struct {
	Name      string `json:"name"`
	Cluster   string `json:"cluster"`
	User      string `json:"user"`
	Namespace string `json:"namespace,omitempty"`
	Current   bool   `json:"current"`
}

// ContextList is the kubeconfig context listing.
type ContextList struct {
	Contexts []KubeContext `json:"contexts"`
	Count    int           `json:"count"`
}

// ListContexts lists the contexts available in the kubeconfig file.
func (c *Client) ListContexts(ctx context.Context) (*ContextList, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath(c.kubeconfig)}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})

	rawConfig, err := clientConfig.RawConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	var contexts []KubeContext
	for name, kctx := range rawConfig.Contexts {
		contexts = append(contexts, KubeContext{
			Name:      name,
			Cluster:   kctx.Cluster,
			User:      kctx.AuthInfo,
			Namespace: kctx.Namespace,
			Current:   name == rawConfig.CurrentContext,
		})
	}

	// Current context first, then by name.
	sort.Slice(contexts, func(i, j int) bool {
		if contexts[i].Current != contexts[j].Current {
			return contexts[i].Current
		}
		return contexts[i].Name < contexts[j].Name
	})

	return &ContextList{Contexts: contexts, Count: len(contexts)}, nil
}

// PodLogsRequest selects which logs to fetch and how to filter them.
type PodLogsRequest struct {
	Namespace   string `json:"namespace" desc:"Pod namespace"`
	Name        string `json:"name" desc:"Pod name"`
	Container   string `json:"container,omitempty" desc:"Container name (required for multi-container pods)"`
	MaxLines    int    `json:"max_lines,omitempty" desc:"Maximum number of lines to retrieve"`
	GrepInclude string `json:"grep_include,omitempty" desc:"Include only lines matching these patterns (comma-separated)"`
	GrepExclude string `json:"grep_exclude,omitempty" desc:"Exclude lines matching these patterns (comma-separated)"`
	UseRegex    bool   `json:"use_regex,omitempty" desc:"Treat grep patterns as regular expressions instead of literal strings"`
	Since       string `json:"since,omitempty" desc:"Return logs newer than a duration like \"5m\", \"1h\", \"1d\" or an absolute RFC3339 time"`
	Previous    bool   `json:"previous,omitempty" desc:"Return logs from the previous terminated container instance"`
}

// PodLogs is the filtered log payload plus filtering metadata.
type PodLogs struct {
	Namespace     string `json:"namespace"`
	Pod           string `json:"pod"`
	Container     string `json:"container,omitempty"`
	Logs          string `json:"logs"`
	TotalLines    int    `json:"total_lines"`
	MatchingLines int    `json:"matching_lines"`
	Filtered      bool   `json:"filtered"`
}

// GetPodLogs fetches pod logs with optional grep-style and time filtering.
func (c *Client) GetPodLogs(ctx context.Context, req *PodLogsRequest) (*PodLogs, error) {
	if req.Name == "" {
		return nil, errors.New("pod name is required")
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = c.namespace
	}
	if namespace == "" {
		return nil, errors.New("namespace is required")
	}

	sinceTime, sinceSeconds, err := logfilter.ParseSinceTime(req.Since)
	if err != nil {
		return nil, fmt.Errorf("invalid since time: %w", err)
	}

	filterOpts := &logfilter.FilterOptions{
		GrepInclude: splitPatterns(req.GrepInclude),
		GrepExclude: splitPatterns(req.GrepExclude),
		UseRegex:    req.UseRegex,
	}
	if err := logfilter.ValidateFilterOptions(filterOpts); err != nil {
		return nil, fmt.Errorf("invalid filter options: %w", err)
	}

	logOptions := &corev1.PodLogOptions{
		Container: req.Container,
		Previous:  req.Previous,
	}
	if req.MaxLines > 0 {
		lines := int64(req.MaxLines)
		logOptions.TailLines = &lines
	}
	if sinceTime != nil {
		t := metav1.NewTime(*sinceTime)
		logOptions.SinceTime = &t
	}
	if sinceSeconds != nil {
		logOptions.SinceSeconds = sinceSeconds
	}

	stream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(req.Name, logOptions).Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pod logs: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	logBytes, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pod logs: %w", err)
	}
	logs := string(logBytes)

	filtered, err := logfilter.FilterLogs(logs, filterOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs: %w", err)
	}

	matching, err := logfilter.CountMatchingLines(logs, filterOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to count matching lines: %w", err)
	}

	return &PodLogs{
		Namespace:     namespace,
		Pod:           req.Name,
		Container:     req.Container,
		Logs:          filtered,
		TotalLines:    len(strings.Split(logs, "\n")),
		MatchingLines: matching,
		Filtered:      len(filterOpts.GrepInclude) > 0 || len(filterOpts.GrepExclude) > 0,
	}, nil
}

// PodContainersRequest identifies the pod to inspect.
type PodContainersRequest struct {
	Namespace string `json:"namespace" desc:"Pod namespace"`
	Name      string `json:"name" desc:"Pod name"`
}

// ContainerList names the containers inside one pod.
type ContainerList struct {
	Containers []string `json:"containers"`
}

// GetPodContainers lists the containers of a pod for log access.
func (c *Client) GetPodContainers(ctx context.Context, req *PodContainersRequest) (*ContainerList, error) {
	if req.Name == "" {
		return nil, errors.New("pod name is required")
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = c.namespace
	}
	if namespace == "" {
		return nil, errors.New("namespace is required")
	}

	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, req.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod: %w", err)
	}

	containers := make([]string, 0, len(pod.Spec.Containers))
	for _, container := range pod.Spec.Containers {
		containers = append(containers, container.Name)
	}

	return &ContainerList{Containers: containers}, nil
}

// resolveResourceType converts a user-friendly resource type name (plural,
// singular, kind or short name, case-insensitive) to a GroupVersionResource.
func (c *Client) resolveResourceType(resourceType, apiVersion string) (schema.GroupVersionResource, error) {
	lists, err := c.discoveryClient.ServerPreferredResources()
	if err != nil && len(lists) == 0 {
		return schema.GroupVersionResource{}, fmt.Errorf("failed to discover resources: %w", err)
	}

	type resourceInfo struct {
		gvr        schema.GroupVersionResource
		apiVersion string
	}

	nameToResource := make(map[string]resourceInfo)
	var known []string

	for _, list := range lists {
		if apiVersion != "" && list.GroupVersion != apiVersion {
			continue
		}

		gv, err := schema.ParseGroupVersion(list.GroupVersion)
		if err != nil {
			continue
		}

		for _, resource := range list.APIResources {
			if strings.Contains(resource.Name, "/") {
				continue
			}

			info := resourceInfo{gvr: gv.WithResource(resource.Name), apiVersion: list.GroupVersion}

			names := append([]string{resource.Name, resource.SingularName, resource.Kind}, resource.ShortNames...)
			for _, name := range names {
				if name == "" {
					continue
				}
				lower := strings.ToLower(name)
				if _, exists := nameToResource[lower]; !exists {
					nameToResource[lower] = info
				}
				known = append(known, name)
			}
		}
	}

	if info, found := nameToResource[strings.ToLower(resourceType)]; found {
		return info.gvr, nil
	}

	msg := fmt.Sprintf("resource type %q not found", resourceType)
	if apiVersion != "" {
		msg += fmt.Sprintf(" in API version %q", apiVersion)
	}
	if len(known) > 0 {
		unique := make(map[string]bool, len(known))
		for _, name := range known {
			unique[name] = true
		}
		var sorted []string
		for name := range unique {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)
		if len(sorted) > 10 {
			msg += fmt.Sprintf(". Available resource types include: %v (and %d more)", sorted[:10], len(sorted)-10)
		} else {
			msg += fmt.Sprintf(". Available resource types include: %v", sorted)
		}
	}

	return schema.GroupVersionResource{}, errors.New(msg)
}

func resourceSummary(resource *unstructured.Unstructured) map[string]any {
	summary := make(map[string]any)

	if apiVersion := resource.GetAPIVersion(); apiVersion != "" {
		summary["apiVersion"] = apiVersion
	}
	if kind := resource.GetKind(); kind != "" {
		summary["kind"] = kind
	}
	if metadata := resource.Object["metadata"]; metadata != nil {
		summary["metadata"] = metadata
	}

	return summary
}

func creationTime(item map[string]any) (time.Time, bool) {
	metadata, ok := item["metadata"].(map[string]any)
	if !ok {
		return time.Time{}, false
	}

	stamp, ok := metadata["creationTimestamp"].(string)
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func splitPatterns(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// TestConnectivity verifies the cluster is reachable and the client has basic
// permissions. It runs once at startup before the MCP server accepts traffic;
// the surface walker deny-lists it so it never becomes a tool.
func (c *Client) TestConnectivity(ctx context.Context) error {
	version, err := c.discoveryClient.ServerVersion()
	if err != nil {
		return fmt.Errorf("failed to get server version: %w", err)
	}

	resources, err := c.discoveryClient.ServerPreferredResources()
	if err != nil {
		if len(resources) == 0 {
			return fmt.Errorf("failed to discover API resources: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: some API resources may be deprecated or unavailable: %v\n", err)
	}

	namespaces, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to list namespaces (check RBAC permissions): %w", err)
	}

	fmt.Fprintf(os.Stderr, "Connected to Kubernetes cluster (version: %s, %d namespaces accessible)\n",
		version.String(), len(namespaces.Items))
	return nil
}
