// Package loss builds the cross-modal hashing objective and its gradients.
//
// The Composer combines a similarity term (pairwise cosine MSE or label-mined
// triplets) with a bit saturation term (Push) and a bit balance term (Balance):
//
//	Total = Sim - beta/bits*Push + gamma*Balance
//
// Every term returns its value together with the gradient with respect to the
// logits of each modality, so encoders can run their own backward pass
// without an autodiff engine.
package loss
