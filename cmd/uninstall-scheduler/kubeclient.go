package main

import (
	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// newInClusterClientset builds a client-go clientset from the in-cluster
// service account, the normal way a scheduler running as a pod authenticates
// to the Kubernetes API server it also uses as a secrets backend.
func newInClusterClientset() (kubernetes.Interface, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "load in-cluster config")
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build kubernetes clientset")
	}
	return clientset, nil
}
