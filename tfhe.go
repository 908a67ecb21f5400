// Package tfhe is a library for fully homomorphic encryption over the torus.
// It implements the CGGI cryptosystem with programmable bootstrapping:
// Boolean gates and small-integer arithmetic are evaluated directly over
// encrypted data, with every gate refreshing the ciphertext noise through
// a blind rotation.
//
// The library is organized as follows:
//   - ring: modular arithmetic and negacyclic polynomial arithmetic (NTT)
//     over Z_q[X]/(X^N+1) for an NTT-friendly prime q.
//   - core/glwe: LWE and GLWE entities (keys, ciphertexts), encryption,
//     decryption, gadget decomposition, keyswitching and sample extraction.
//   - core/ggsw: GGSW entities, the external product, the CMux and the
//     blind-rotation based programmable bootstrapping.
//   - boolean: encrypted Boolean algebra (NOT, AND, OR, XOR, NAND, NOR,
//     XNOR, MUX) with one bootstrapping per binary gate.
//   - shortint: small integers with a message/carry encoding, leveled
//     (unchecked) arithmetic and lookup-table evaluation through the
//     programmable bootstrapping.
package tfhe

// Version is the current version of the library.
const Version = "0.1.0"
