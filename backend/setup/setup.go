package setup

import (
	"context"
	"fmt"

	"github.com/GlintPay/agentstack/backend"
	"github.com/GlintPay/agentstack/backend/file"
	"github.com/GlintPay/agentstack/backend/git"
	"github.com/GlintPay/agentstack/config"
	"github.com/GlintPay/agentstack/store"
	"github.com/GlintPay/agentstack/store/kube"
	"github.com/GlintPay/agentstack/store/stackfile"
	"github.com/rs/zerolog/log"
	"k8s.io/client-go/kubernetes"
)

type opts struct {
	clientset kubernetes.Interface
	decrypter stackfile.Decrypter
}

type Opt func(*opts)

// WithClientset replaces the clientset built from `k8s.kubeconfig`.
func WithClientset(cs kubernetes.Interface) Opt {
	return func(o *opts) {
		o.clientset = cs
	}
}

func WithDecrypter(d stackfile.Decrypter) Opt {
	return func(o *opts) {
		o.decrypter = d
	}
}

// NewBackend returns the uninitialised document backend for a file or git source.
func NewBackend(appConfig config.ApplicationConfiguration) (backend.Backend, error) {
	switch appConfig.Source {
	case "", config.SourceFile:
		return &file.Backend{}, nil
	case config.SourceGit:
		return &git.Backend{EnableTrace: appConfig.Tracing.Enabled}, nil
	default:
		return nil, fmt.Errorf("source [%s] has no document backend", appConfig.Source)
	}
}

// NewStore opens the configuration store selected by `source`.
func NewStore(ctx context.Context, appConfig config.ApplicationConfiguration, options ...Opt) (store.Store, error) {
	o := opts{}
	for _, optionFunc := range options {
		optionFunc(&o)
	}

	if appConfig.Source == config.SourceKubernetes {
		log.Info().Msg("Using Kubernetes configuration store")
		return newKubeStore(appConfig, o)
	}

	b, err := NewBackend(appConfig)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf("Using %T configuration store", b)

	if err = b.Init(ctx, appConfig); err != nil {
		return nil, err
	}
	defer b.Close()

	doc, err := b.Load(ctx, false)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("version", doc.Version).Msgf("Loaded stack document %s", doc.Name)

	s, err := stackfile.Parse(doc.Name, doc.Data, o.decrypter)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newKubeStore(appConfig config.ApplicationConfiguration, o opts) (store.Store, error) {
	cs := o.clientset
	if cs == nil {
		var err error
		if cs, err = kube.NewClientset(appConfig.K8s.Kubeconfig); err != nil {
			return nil, err
		}
	}

	return kube.NewStore(kube.NewClient(cs, appConfig.K8s.CacheTTLSeconds), kube.Options{
		Project:       appConfig.Stack.ProjectOrDefault(),
		Namespace:     appConfig.K8s.Namespace,
		ConfigMapName: appConfig.K8s.ConfigMapName,
		SecretName:    appConfig.K8s.SecretName,
	}), nil
}
