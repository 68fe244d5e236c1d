package ingest

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
)

// uploadScript is the shell loop executed inside the batch job container.
// It creates the target collection, then uploads every file named in the
// mounted file list to the ingestion service.
const uploadScript = `set -eu
apk add --no-cache curl coreutils
LIST="/work/files.txt"

echo "Creating collection: ${COLLECTION_NAME}"
curl -sf -X POST "${INGEST_API}/collection" \
  -H "Content-Type: application/json" \
  -d "{\"collection_name\":\"${COLLECTION_NAME}\"}" || true

successes=0; failures=0
while IFS= read -r f || [ -n "${f-}" ]; do
  case "${f}" in ""|\#*) continue;; esac
  if [ -f "${f}" ]; then
    echo "Uploading: ${f}"
    if curl -sf -X POST "${INGEST_API}/documents" \
          -F "documents=@${f}" \
          -F "data={\"collection_name\":\"${COLLECTION_NAME}\"}"; then
      successes=$((successes+1))
    else
      echo "Upload failed: ${f}" >&2
      failures=$((failures+1))
    fi
  else
    echo "Missing file: ${f}" >&2
    failures=$((failures+1))
  fi
done < "${LIST}"

echo "Submitted. Successes=${successes}, Failures=${failures}"
`

type objectMeta struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
}

type configMapManifest struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Metadata   objectMeta        `yaml:"metadata"`
	Data       map[string]string `yaml:"data"`
}

type envVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type volumeMount struct {
	Name      string `yaml:"name"`
	MountPath string `yaml:"mountPath"`
}

type containerSpec struct {
	Name         string        `yaml:"name"`
	Image        string        `yaml:"image"`
	Command      []string      `yaml:"command"`
	Args         []string      `yaml:"args"`
	Env          []envVar      `yaml:"env"`
	VolumeMounts []volumeMount `yaml:"volumeMounts"`
}

type keyToPath struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

type volumeSpec struct {
	Name                  string `yaml:"name"`
	PersistentVolumeClaim *struct {
		ClaimName string `yaml:"claimName"`
	} `yaml:"persistentVolumeClaim,omitempty"`
	ConfigMap *struct {
		Name  string      `yaml:"name"`
		Items []keyToPath `yaml:"items"`
	} `yaml:"configMap,omitempty"`
}

type podSpec struct {
	RestartPolicy string          `yaml:"restartPolicy"`
	Containers    []containerSpec `yaml:"containers"`
	Volumes       []volumeSpec    `yaml:"volumes"`
}

type jobManifest struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Metadata   objectMeta `yaml:"metadata"`
	Spec       struct {
		BackoffLimit int `yaml:"backoffLimit"`
		Template     struct {
			Spec podSpec `yaml:"spec"`
		} `yaml:"template"`
	} `yaml:"spec"`
}

// Manifests holds the serialized pair of cluster resources that make up one
// ingestion job: the file-list ConfigMap and the batch Job itself.
type Manifests struct {
	ConfigMapName string
	ConfigMapYAML []byte
	JobYAML       []byte
}

// buildManifests renders the ConfigMap and Job for jobName over the given
// container-relative file paths.
func buildManifests(cfg config.IngestConfig, jobName, collectionName string, containerFiles []string) (*Manifests, error) {
	configMapName := jobName + "-file-list"

	cm := configMapManifest{
		APIVersion: "v1",
		Kind:       "ConfigMap",
		Metadata:   objectMeta{Name: configMapName, Namespace: cfg.JobNamespace},
		Data:       map[string]string{"files.txt": strings.Join(containerFiles, "\n")},
	}

	job := jobManifest{
		APIVersion: "batch/v1",
		Kind:       "Job",
		Metadata:   objectMeta{Name: jobName, Namespace: cfg.JobNamespace},
	}
	job.Spec.BackoffLimit = 0
	job.Spec.Template.Spec = podSpec{
		RestartPolicy: "Never",
		Containers: []containerSpec{{
			Name:    "ingest",
			Image:   cfg.JobImage,
			Command: []string{"/bin/sh", "-lc"},
			Args:    []string{uploadScript},
			Env: []envVar{
				{Name: "COLLECTION_NAME", Value: collectionName},
				{Name: "INGEST_API", Value: cfg.IngestAPIURL},
			},
			VolumeMounts: []volumeMount{
				{Name: "pdfs", MountPath: cfg.DataMountPrefix},
				{Name: "filelist", MountPath: "/work"},
			},
		}},
		Volumes: []volumeSpec{
			{
				Name: "pdfs",
				PersistentVolumeClaim: &struct {
					ClaimName string `yaml:"claimName"`
				}{ClaimName: cfg.PVCName},
			},
			{
				Name: "filelist",
				ConfigMap: &struct {
					Name  string      `yaml:"name"`
					Items []keyToPath `yaml:"items"`
				}{
					Name:  configMapName,
					Items: []keyToPath{{Key: "files.txt", Path: "files.txt"}},
				},
			},
		},
	}

	cmYAML, err := yaml.Marshal(cm)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to render file-list manifest")
	}
	jobYAML, err := yaml.Marshal(job)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to render job manifest")
	}

	return &Manifests{
		ConfigMapName: configMapName,
		ConfigMapYAML: cmYAML,
		JobYAML:       jobYAML,
	}, nil
}
