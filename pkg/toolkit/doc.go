// Package toolkit drives the external cheminformatics programs confgen
// delegates to. Open Babel parses SMILES and builds 3-D structures; CREST,
// driven through gochem's qm package, runs the conformational search.
package toolkit
