package provision

import (
	"context"
	"fmt"

	"github.com/GlintPay/agentstack/topology"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// typedClient is the subset of a client-go typed resource client used here.
type typedClient[T topology.Object] interface {
	Create(ctx context.Context, obj T, opts metav1.CreateOptions) (T, error)
	Get(ctx context.Context, name string, opts metav1.GetOptions) (T, error)
	Update(ctx context.Context, obj T, opts metav1.UpdateOptions) (T, error)
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
}

func (p *Provisioner) ensure(ctx context.Context, obj topology.Object) (string, error) {
	cs := p.client
	switch o := obj.(type) {
	case *corev1.Namespace:
		return ensure(ctx, cs.CoreV1().Namespaces(), o, p.fieldManager, nil)
	case *corev1.ServiceAccount:
		return ensure(ctx, cs.CoreV1().ServiceAccounts(o.Namespace), o, p.fieldManager, nil)
	case *corev1.ConfigMap:
		return ensure(ctx, cs.CoreV1().ConfigMaps(o.Namespace), o, p.fieldManager, nil)
	case *corev1.Secret:
		return ensure(ctx, cs.CoreV1().Secrets(o.Namespace), o, p.fieldManager, nil)
	case *corev1.Service:
		return ensure(ctx, cs.CoreV1().Services(o.Namespace), o, p.fieldManager, keepClusterIP)
	case *rbacv1.Role:
		return ensure(ctx, cs.RbacV1().Roles(o.Namespace), o, p.fieldManager, nil)
	case *rbacv1.RoleBinding:
		return ensure(ctx, cs.RbacV1().RoleBindings(o.Namespace), o, p.fieldManager, nil)
	case *appsv1.Deployment:
		return ensure(ctx, cs.AppsV1().Deployments(o.Namespace), o, p.fieldManager, nil)
	case *batchv1.CronJob:
		return ensure(ctx, cs.BatchV1().CronJobs(o.Namespace), o, p.fieldManager, nil)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedObject, obj)
	}
}

func (p *Provisioner) delete(ctx context.Context, obj topology.Object) (bool, error) {
	cs := p.client
	name := obj.GetName()
	opts := metav1.DeleteOptions{}

	var err error
	switch o := obj.(type) {
	case *corev1.Namespace:
		err = cs.CoreV1().Namespaces().Delete(ctx, name, opts)
	case *corev1.ServiceAccount:
		err = cs.CoreV1().ServiceAccounts(o.Namespace).Delete(ctx, name, opts)
	case *corev1.ConfigMap:
		err = cs.CoreV1().ConfigMaps(o.Namespace).Delete(ctx, name, opts)
	case *corev1.Secret:
		err = cs.CoreV1().Secrets(o.Namespace).Delete(ctx, name, opts)
	case *corev1.Service:
		err = cs.CoreV1().Services(o.Namespace).Delete(ctx, name, opts)
	case *rbacv1.Role:
		err = cs.RbacV1().Roles(o.Namespace).Delete(ctx, name, opts)
	case *rbacv1.RoleBinding:
		err = cs.RbacV1().RoleBindings(o.Namespace).Delete(ctx, name, opts)
	case *appsv1.Deployment:
		err = cs.AppsV1().Deployments(o.Namespace).Delete(ctx, name, opts)
	case *batchv1.CronJob:
		err = cs.BatchV1().CronJobs(o.Namespace).Delete(ctx, name, opts)
	default:
		return false, fmt.Errorf("%w: %T", ErrUnsupportedObject, obj)
	}

	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ensure creates `desired`, or replaces the live object keeping its resourceVersion.
func ensure[T topology.Object](ctx context.Context, c typedClient[T], desired T, fieldManager string, merge func(live, desired T)) (string, error) {
	_, err := c.Create(ctx, desired, metav1.CreateOptions{FieldManager: fieldManager})
	if err == nil {
		return "Created", nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return "", err
	}

	live, err := c.Get(ctx, desired.GetName(), metav1.GetOptions{})
	if err != nil {
		return "", err
	}

	update := desired.DeepCopyObject().(T)
	update.SetResourceVersion(live.GetResourceVersion())
	if merge != nil {
		merge(live, update)
	}

	if _, err = c.Update(ctx, update, metav1.UpdateOptions{FieldManager: fieldManager}); err != nil {
		return "", err
	}
	return "Updated", nil
}

// keepClusterIP carries the allocated cluster IP over, since it is immutable.
func keepClusterIP(live, desired *corev1.Service) {
	desired.Spec.ClusterIP = live.Spec.ClusterIP
	desired.Spec.ClusterIPs = live.Spec.ClusterIPs
}
