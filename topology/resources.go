package topology

import (
	"sort"

	"github.com/GlintPay/agentstack/resolver"
	"github.com/GlintPay/agentstack/secret"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

const (
	CleanerServiceAccountName      = "agent-cleaner-serviceaccount"
	CleanerRoleName                = "agent-cleaner-role"
	CleanerRoleBindingName         = "agent-cleaner-rolebinder"
	CleanupCronJobName             = "agent-cleanup"
	OrchestratorServiceAccountName = "agent-orchestrator-serviceaccount"
	ManagerRoleName                = "agents-manager"
	ManagerRoleBindingName         = "agents-manager-binding"
	OrchestratorSecretName         = "orchestrator-secrets"
)

// Resource IDs, stable across renames of the underlying objects.
const (
	IDControlPlaneNamespace      = "ns-control-plane"
	IDAgentsNamespace            = "ns-agents"
	IDCleanerServiceAccount      = "agent-cleaner-serviceaccount"
	IDCleanerRole                = "agent-cleaner-role"
	IDCleanerRoleBinding         = "agent-cleaner-rolebinder"
	IDCleanupCronJob             = "agent-cleanup-job"
	IDOrchestratorServiceAccount = "agent-orchestrator-serviceaccount"
	IDManagerRole                = "agents-manager-role"
	IDManagerRoleBinding         = "agents-manager-rb"
	IDOrchestratorConfig         = "orchestrator-config"
	IDOrchestratorSecrets        = "orchestrator-secrets"
	IDOrchestratorDeployment     = "orchestrator-dep"
	IDOrchestratorService        = "orchestrator-svc"
)

type definition struct {
	id        string
	dependsOn []string
	build     func(p Params, cfg *resolver.Configuration) (Object, error)
}

func static(f func(p Params) Object) func(Params, *resolver.Configuration) (Object, error) {
	return func(p Params, _ *resolver.Configuration) (Object, error) {
		return f(p), nil
	}
}

var definitions = []definition{
	{id: IDControlPlaneNamespace, build: static(func(p Params) Object { return namespace(p.ControlPlaneNamespace) })},
	{id: IDAgentsNamespace, build: static(func(p Params) Object { return namespace(p.AgentsNamespace) })},

	{id: IDCleanerServiceAccount, dependsOn: []string{IDAgentsNamespace}, build: static(func(p Params) Object {
		return serviceAccount(CleanerServiceAccountName, p.AgentsNamespace)
	})},
	{id: IDCleanerRole, dependsOn: []string{IDAgentsNamespace}, build: static(func(p Params) Object {
		return role(CleanerRoleName, p.AgentsNamespace, rbacv1.PolicyRule{
			APIGroups: []string{""},
			Resources: []string{"pods"},
			Verbs:     []string{"list", "delete"},
		})
	})},
	{id: IDCleanerRoleBinding, dependsOn: []string{IDCleanerServiceAccount, IDCleanerRole}, build: static(func(p Params) Object {
		return roleBinding(CleanerRoleBindingName, p.AgentsNamespace, CleanerRoleName, CleanerServiceAccountName, p.AgentsNamespace)
	})},
	{id: IDCleanupCronJob, dependsOn: []string{IDCleanerRoleBinding}, build: func(p Params, _ *resolver.Configuration) (Object, error) {
		return cleanupCronJob(p)
	}},

	{id: IDOrchestratorServiceAccount, dependsOn: []string{IDControlPlaneNamespace}, build: static(func(p Params) Object {
		return serviceAccount(OrchestratorServiceAccountName, p.ControlPlaneNamespace)
	})},
	{id: IDManagerRole, dependsOn: []string{IDAgentsNamespace}, build: static(func(p Params) Object {
		return role(ManagerRoleName, p.AgentsNamespace, rbacv1.PolicyRule{
			APIGroups: []string{""},
			Resources: []string{"pods", "pods/log"},
			Verbs:     []string{"create", "list", "watch", "delete", "get"},
		})
	})},
	{id: IDManagerRoleBinding, dependsOn: []string{IDOrchestratorServiceAccount, IDManagerRole}, build: static(func(p Params) Object {
		return roleBinding(ManagerRoleBindingName, p.AgentsNamespace, ManagerRoleName, OrchestratorServiceAccountName, p.ControlPlaneNamespace)
	})},

	{id: IDOrchestratorConfig, dependsOn: []string{IDControlPlaneNamespace}, build: func(p Params, cfg *resolver.Configuration) (Object, error) {
		return configMap(p, cfg.Plain), nil
	}},
	{id: IDOrchestratorSecrets, dependsOn: []string{IDControlPlaneNamespace}, build: func(p Params, cfg *resolver.Configuration) (Object, error) {
		return redactedSecret(p, cfg.Secrets), nil
	}},
	{id: IDOrchestratorDeployment, dependsOn: []string{IDOrchestratorServiceAccount, IDManagerRoleBinding, IDOrchestratorConfig, IDOrchestratorSecrets}, build: func(p Params, cfg *resolver.Configuration) (Object, error) {
		return deployment(p, sortedNames(cfg.Secrets)), nil
	}},
	{id: IDOrchestratorService, dependsOn: []string{IDOrchestratorDeployment}, build: static(service)},
}

func appLabels(p Params) map[string]string {
	return map[string]string{"app": p.OrchestratorName}
}

func namespace(name string) *corev1.Namespace {
	return &corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
}

func serviceAccount(name, ns string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
	}
}

func role(name, ns string, rules ...rbacv1.PolicyRule) *rbacv1.Role {
	return &rbacv1.Role{
		TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "Role"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Rules:      rules,
	}
}

func roleBinding(name, ns, roleName, saName, saNamespace string) *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "RoleBinding"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      saName,
			Namespace: saNamespace,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     roleName,
		},
	}
}

func cleanupCronJob(p Params) (*batchv1.CronJob, error) {
	command, err := CleanupCommand(p.CleanupPhases)
	if err != nil {
		return nil, err
	}

	return &batchv1.CronJob{
		TypeMeta:   metav1.TypeMeta{APIVersion: batchv1.SchemeGroupVersion.String(), Kind: "CronJob"},
		ObjectMeta: metav1.ObjectMeta{Name: CleanupCronJobName, Namespace: p.AgentsNamespace},
		Spec: batchv1.CronJobSpec{
			Schedule: p.CleanupSchedule,
			JobTemplate: batchv1.JobTemplateSpec{
				Spec: batchv1.JobSpec{
					Template: corev1.PodTemplateSpec{
						Spec: corev1.PodSpec{
							ServiceAccountName: CleanerServiceAccountName,
							RestartPolicy:      corev1.RestartPolicyOnFailure,
							Containers: []corev1.Container{{
								Name:    "kubectl",
								Image:   p.CleanupImage,
								Command: []string{"/bin/sh", "-c"},
								Args:    []string{command},
							}},
						},
					},
				},
			},
		},
	}, nil
}

func configMap(p Params, plain map[string]string) *corev1.ConfigMap {
	data := make(map[string]string, len(plain))
	for k, v := range plain {
		data[k] = v
	}
	return &corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{Name: ConfigMapName(p), Namespace: p.ControlPlaneNamespace},
		Data:       data,
	}
}

// ConfigMapName is the name of the ConfigMap carrying the plain configuration.
func ConfigMapName(p Params) string {
	return p.OrchestratorName + "-config"
}

func redactedSecret(p Params, secrets map[string]secret.Handle) *corev1.Secret {
	data := make(map[string]string, len(secrets))
	for k := range secrets {
		data[k] = secret.Redacted
	}
	return &corev1.Secret{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{Name: OrchestratorSecretName, Namespace: p.ControlPlaneNamespace},
		Type:       corev1.SecretTypeOpaque,
		StringData: data,
	}
}

func deployment(p Params, secretNames []string) *appsv1.Deployment {
	env := make([]corev1.EnvVar, 0, len(secretNames))
	for _, name := range secretNames {
		env = append(env, corev1.EnvVar{
			Name: name,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: OrchestratorSecretName},
					Key:                  name,
				},
			},
		})
	}

	labels := appLabels(p)

	return &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: appsv1.SchemeGroupVersion.String(), Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{Name: p.OrchestratorName, Namespace: p.ControlPlaneNamespace, Labels: labels},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(p.Replicas),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					ServiceAccountName: OrchestratorServiceAccountName,
					Containers: []corev1.Container{{
						Name:            p.OrchestratorName,
						Image:           p.OrchestratorImage,
						ImagePullPolicy: corev1.PullAlways,
						Ports:           []corev1.ContainerPort{{ContainerPort: p.OrchestratorPort}},
						EnvFrom: []corev1.EnvFromSource{{
							ConfigMapRef: &corev1.ConfigMapEnvSource{
								LocalObjectReference: corev1.LocalObjectReference{Name: ConfigMapName(p)},
							},
						}},
						Env: env,
					}},
				},
			},
		},
	}
}

func service(p Params) Object {
	return &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{Name: p.OrchestratorName, Namespace: p.ControlPlaneNamespace},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: appLabels(p),
			Ports: []corev1.ServicePort{{
				Port:       p.OrchestratorPort,
				TargetPort: intstr.FromInt32(p.OrchestratorPort),
			}},
		},
	}
}

func sortedNames(secrets map[string]secret.Handle) []string {
	names := make([]string, 0, len(secrets))
	for k := range secrets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
