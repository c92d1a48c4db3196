// Package autodiff implements reverse-mode automatic differentiation over an
// explicit, per-forward-pass gradient tape.
//
// Architecture:
//   - GradientTape: records the activation records of one forward pass
//   - ops.Operation: closed set of variants (affine, relu, log-softmax+NLL),
//     each with a pure backward rule
//   - Backward: walks the tape in reverse and is the only writer that adds
//     into parameter gradient buffers
//
// Gradients accumulate. Running two forward/backward cycles without clearing
// leaves twice the single-pass gradient in every buffer; optim.Optimizer.ZeroGrad
// resets them.
package autodiff
