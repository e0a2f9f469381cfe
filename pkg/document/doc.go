// Package document defines the declarative, serialization-independent form of
// a decision tree together with its YAML and JSON codecs.
package document
