// Package servicespec carries the narrow slice of the service specification
// the uninstall coordinator actually reads: the service name (used as both
// the state-store namespace and the secrets namespace) and whether any task
// declares transport encryption, which gates the TLS-cleanup phase. The full
// service-spec grammar (pod placement, health checks, resource requests) is
// loaded and owned elsewhere and is out of scope here.
package servicespec

// TransportEncryptionSpec marks that a task requires TLS material to be
// provisioned via the secrets store.
type TransportEncryptionSpec struct {
	Name string
	Type TransportEncryptionType
}

// TransportEncryptionType distinguishes keystore-based from PEM-based TLS
// material, mirroring the two forms the original secrets layout supports.
type TransportEncryptionType int

// Recognized transport encryption material types.
const (
	TransportEncryptionKeystore TransportEncryptionType = iota
	TransportEncryptionTLS
)

// TaskSpec is the slice of a task's specification relevant to uninstall.
type TaskSpec struct {
	Name                string
	TransportEncryption []TransportEncryptionSpec
}

// PodSpec groups the tasks that make up one pod instance.
type PodSpec struct {
	Type  string
	Tasks []TaskSpec
}

// ServiceSpec is the slice of the overall service specification the
// coordinator consults.
type ServiceSpec struct {
	Name string
	Pods []PodSpec
}

// HasTransportEncryption reports whether any task in the service declares a
// transport-encryption requirement, which is what gates the TLS-cleanup
// phase (spec §4.B, phase 3).
func (s ServiceSpec) HasTransportEncryption() bool {
	for _, pod := range s.Pods {
		for _, task := range pod.Tasks {
			if len(task.TransportEncryption) > 0 {
				return true
			}
		}
	}
	return false
}
