// Package mockup converts between the resource store and a Redfish mockup
// directory tree.
//
// Layout:
//
//	<root>/index.json                 -> /redfish/v1
//	<root>/Chassis/index.json         -> /redfish/v1/Chassis
//	<root>/Chassis/1/index.json       -> /redfish/v1/Chassis/1
//	<root>/$metadata/index.xml        -> /redfish/v1/$metadata
//
// The protocol version document at /redfish lives above the mockup root and
// is never exported. The $metadata document is stored in the tree as the
// decoded form produced by DecodeMetadata and written back as XML.
//
// Import decodes every file before touching the store, so a malformed file
// leaves the store unchanged. Export replaces the target directory wholesale.
package mockup
