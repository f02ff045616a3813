package secrets

import (
	"context"

	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// KubernetesClient implements Client against a real Kubernetes API server,
// treating the configured service namespace as a Kubernetes namespace and
// every TLS artifact as a corev1.Secret in it. This matches the "list then
// delete all secrets in the service's namespace" contract of spec §4.B
// exactly, since Kubernetes secrets are namespaced objects by construction.
type KubernetesClient struct {
	clientset kubernetes.Interface
}

// NewKubernetesClient wraps an existing client-go clientset. Building that
// clientset (in-cluster config vs kubeconfig) is deployment wiring owned by
// cmd/uninstall-scheduler, not this package.
func NewKubernetesClient(clientset kubernetes.Interface) *KubernetesClient {
	return &KubernetesClient{clientset: clientset}
}

// List returns the names of every secret in namespace.
func (c *KubernetesClient) List(namespace string) ([]string, error) {
	list, err := c.clientset.CoreV1().Secrets(namespace).List(context.Background(), metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "list secrets in namespace %q", namespace)
	}
	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.Name)
	}
	return names, nil
}

// Delete removes a single secret by name.
func (c *KubernetesClient) Delete(namespace, name string) error {
	err := c.clientset.CoreV1().Secrets(namespace).Delete(context.Background(), name, metav1.DeleteOptions{})
	if err != nil {
		return errors.Wrapf(err, "delete secret %q in namespace %q", name, namespace)
	}
	return nil
}
