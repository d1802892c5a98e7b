package commands

import (
	"context"

	"github.com/GlintPay/agentstack/backend/setup"
	"github.com/GlintPay/agentstack/config"
	"github.com/GlintPay/agentstack/provision"
	"github.com/GlintPay/agentstack/resolver"
	"github.com/GlintPay/agentstack/store"
	"github.com/GlintPay/agentstack/store/kube"
	"github.com/GlintPay/agentstack/topology"
	"k8s.io/client-go/kubernetes"
)

// newClientset is replaced in tests.
var newClientset = kube.NewClientset

type session struct {
	appConfig config.ApplicationConfiguration
	clientset kubernetes.Interface
	store     store.Store
}

// open loads the configuration file and the store it selects. The clientset is only
// built when the store or the command needs one.
func open(ctx context.Context, opts *globalOptions, needCluster bool) (*session, error) {
	appConfig, err := config.LoadApplicationConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	s := &session{appConfig: appConfig}

	var storeOpts []setup.Opt
	if needCluster || appConfig.Source == config.SourceKubernetes {
		if s.clientset, err = newClientset(appConfig.K8s.Kubeconfig); err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, setup.WithClientset(s.clientset))
	}

	if s.store, err = setup.NewStore(ctx, appConfig, storeOpts...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) resolve(ctx context.Context) (*resolver.Configuration, error) {
	r := &resolver.Resolver{EnableTrace: s.appConfig.Tracing.Enabled}
	return r.Resolve(ctx, s.store, s.appConfig.Stack.PrefixOrDefault(), s.appConfig.Stack.ProjectOrDefault())
}

func (s *session) plan(ctx context.Context) (*topology.Stack, error) {
	return provision.Plan(ctx, s.appConfig, s.store)
}

func (s *session) provisioner() *provision.Provisioner {
	return provision.New(s.clientset, provision.Options{FieldManager: s.appConfig.K8s.FieldManager})
}
